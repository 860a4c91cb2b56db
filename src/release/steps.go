package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"relmod-agent/src/buildtool"
	"relmod-agent/src/cienv"
	"relmod-agent/src/logger"
	"relmod-agent/src/notify"
	"relmod-agent/src/project"
	"relmod-agent/src/registry"
)

// Hooks are the user-overridable extension points around publishing. Both
// default to no-ops.
type Hooks struct {
	BeforePublish ActionFunc
	AfterPublish  ActionFunc
}

// NopHooks returns hooks that do nothing.
func NopHooks() Hooks {
	nop := func(ctx context.Context, st *State) error { return nil }
	return Hooks{BeforePublish: nop, AfterPublish: nop}
}

// Steps builds the shared step sequence both flavors execute after the
// version decision. Order matters; the pipeline halts at the first failure.
func Steps(
	env *cienv.Config,
	proj *project.Project,
	reg registry.Client,
	tool buildtool.Tool,
	hooks Hooks,
	notifier *notify.Publisher,
	log logger.Logger,
) []Step {
	if hooks.BeforePublish == nil || hooks.AfterPublish == nil {
		nop := NopHooks()
		if hooks.BeforePublish == nil {
			hooks.BeforePublish = nop.BeforePublish
		}
		if hooks.AfterPublish == nil {
			hooks.AfterPublish = nop.AfterPublish
		}
	}

	return []Step{
		{
			Name:   "validate-metadata",
			Action: func(ctx context.Context, st *State) error { return proj.ValidateMetadata() },
		},
		{
			Name: "check-snapshot-dependencies",
			Action: func(ctx context.Context, st *State) error {
				deps, err := tool.UnreleasedDependencies(ctx)
				if err != nil {
					return err
				}
				if len(deps) > 0 {
					return fmt.Errorf("unreleased dependencies: %s", strings.Join(deps, ", "))
				}
				return nil
			},
		},
		{
			Name: "run-tests",
			TargetAction: func(ctx context.Context, st *State, target string) error {
				if st.SkipTests {
					log.Info("skipping test suite (skip-tests)")
					return nil
				}
				return tool.RunTests(ctx, target)
			},
		},
		{
			Name: "check-binary-compatibility",
			Action: func(ctx context.Context, st *State) error {
				latest, err := reg.LatestVersion(ctx, proj.Module)
				if errors.Is(err, registry.ErrModuleNotFound) {
					log.Info("no previous release of %s, skipping compatibility check", proj.Module)
					return nil
				}
				if err != nil {
					return err
				}
				return tool.CheckCompatibility(ctx, latest.String())
			},
		},
		{
			Name:   "before-publish",
			Action: hooks.BeforePublish,
		},
		{
			Name: "publish-artifacts",
			Check: func(ctx context.Context, st *State) error {
				return env.RequirePublishCredentials()
			},
			TargetAction: func(ctx context.Context, st *State, target string) error {
				return tool.Publish(ctx, st.Current.String(), target)
			},
		},
		{
			Name:   "after-publish",
			Action: hooks.AfterPublish,
		},
		{
			Name: "promote-release",
			Check: func(ctx context.Context, st *State) error {
				if err := env.RequireReleaseToken(); err != nil {
					return err
				}
				// Stable releases must ship notes; nightlies tolerate their
				// absence since there is a notes file per released version,
				// not per date stamp.
				if st.Flavor == Stable {
					if _, err := proj.NotesPath(st.Current.String()); err != nil {
						return err
					}
				}
				return nil
			},
			Action: func(ctx context.Context, st *State) error {
				notesPath, err := proj.NotesPath(st.Current.String())
				if err != nil {
					if st.Flavor == Stable || !errors.Is(err, os.ErrNotExist) {
						return err
					}
					notesPath = ""
				}
				st.NotesPath = notesPath

				if err := tool.Promote(ctx, st.Current.String(), notesPath); err != nil {
					return err
				}

				event := notify.ReleaseEvent{
					Module:  proj.Module,
					Version: st.Current.String(),
					Flavor:  string(st.Flavor),
				}
				if env.CI != nil {
					event.Commit = env.CI.Commit
					event.BuildURL = env.CI.BuildURL
				}
				return notifier.Publish(ctx, event)
			},
		},
	}
}
