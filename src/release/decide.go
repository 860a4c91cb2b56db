package release

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"relmod-agent/src/cienv"
	"relmod-agent/src/logger"
	"relmod-agent/src/project"
	"relmod-agent/src/registry"
	"relmod-agent/src/version"
)

// Decider computes the version to release and the next development version
// for both flavors, then guards against re-publishing.
type Decider struct {
	Env      *cienv.Config
	Registry registry.Client
	Log      logger.Logger

	// Now and Random exist so tests can pin the nightly date stamp and the
	// test-mode suffix. Nil means time.Now and math/rand.
	Now    func() time.Time
	Random func() int
}

// Decide resolves the release version for the state's flavor, stores it in
// the state and logs the current → next transition.
func (d *Decider) Decide(ctx context.Context, proj *project.Project, st *State) error {
	var err error
	switch st.Flavor {
	case Nightly:
		err = d.decideNightly(ctx, proj, st)
	case Stable:
		err = d.decideStable(ctx, proj, st)
	default:
		err = fmt.Errorf("%w: %q", ErrUnexpectedProcess, st.Flavor)
	}
	if err != nil {
		return err
	}

	d.Log.Info("releasing %s %s (next development version %s)", proj.Module, st.Current, st.Next)
	return nil
}

// decideNightly computes the nightly publish version: the base version
// restamped as "<base>-alpha-<year>-<month>-<day>", with a build-unique
// component appended in test mode.
func (d *Decider) decideNightly(ctx context.Context, proj *project.Project, st *State) error {
	base, err := d.baseVersion(proj, st)
	if err != nil {
		return err
	}

	now := d.now()
	suffix := fmt.Sprintf("alpha-%d-%02d-%02d", now.Year(), now.Month(), now.Day())
	if d.Env.TestMode {
		suffix += "-" + d.buildUniqueSuffix()
	}

	publish, err := base.WithSuffix(suffix)
	if err != nil {
		return err
	}

	if err := d.guard(ctx, proj.Module, publish); err != nil {
		return err
	}

	st.Current = publish
	st.Next = base.BumpMinor()
	return nil
}

// decideStable resolves the release version from a git tag: the CLI override
// when given, otherwise the CI environment's tag. Stable releases without an
// override are CI-only.
func (d *Decider) decideStable(ctx context.Context, proj *project.Project, st *State) error {
	tag := st.VersionOverride
	if tag == "" {
		if d.Env.CI == nil {
			return ErrCIOnly
		}
		if d.Env.CI.Tag == "" {
			return ErrNoTag
		}
		tag = d.Env.CI.Tag
	}

	cleaned := strings.TrimPrefix(tag, "v")
	v, err := version.ParseRelease(cleaned)
	if err != nil {
		return fmt.Errorf("release tag %q: %w", tag, err)
	}

	if d.Env.TestMode {
		if v, err = v.WithSuffix(d.buildUniqueSuffix()); err != nil {
			return err
		}
	}

	if err := d.guard(ctx, proj.Module, v); err != nil {
		return err
	}

	st.Current = v
	st.Next = v.BumpMinor()
	return nil
}

// baseVersion resolves the nightly base: the validated CLI override takes
// precedence over the host-declared current version, whose qualifier (e.g.
// a development marker) is stripped.
func (d *Decider) baseVersion(proj *project.Project, st *State) (version.Version, error) {
	if st.VersionOverride != "" {
		v, err := version.ParseRelease(st.VersionOverride)
		if err != nil {
			return version.Version{}, fmt.Errorf("version override: %w", err)
		}
		return v, nil
	}

	v, err := version.Parse(proj.Version)
	if err != nil {
		return version.Version{}, fmt.Errorf("host-declared version: %w", err)
	}
	return v.Core(), nil
}

// guard fails when the computed version is already present in the registry.
func (d *Decider) guard(ctx context.Context, module string, v version.Version) error {
	exists, err := d.Registry.Exists(ctx, module, v.String())
	if err != nil {
		return fmt.Errorf("publish guard: %w", err)
	}
	if exists {
		return fmt.Errorf("%s %s: %w", module, v, ErrAlreadyPublished)
	}
	return nil
}

// buildUniqueSuffix prefers the CI build number; without CI metadata a
// random non-negative integer keeps test publishes unique.
func (d *Decider) buildUniqueSuffix() string {
	if d.Env.CI != nil && d.Env.CI.BuildNumber != "" {
		return d.Env.CI.BuildNumber
	}
	if d.Random != nil {
		return fmt.Sprintf("%d", d.Random())
	}
	return fmt.Sprintf("%d", rand.Int())
}

func (d *Decider) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
