// Package version provides the semantic version value used throughout the
// release pipeline. It wraps Masterminds/semver with the validation rules
// the release process needs: publish-time versions must carry no pre-release
// qualifier or build metadata.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is an immutable semantic version. Construct one with Parse or
// ParseRelease; the zero value is not valid.
type Version struct {
	v *semver.Version
}

// Parse parses any valid semantic version string, including pre-release
// forms such as "1.2.0-SNAPSHOT". Missing minor or patch components are
// treated as zero.
func Parse(s string) (Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// ParseRelease parses a publish-time version. It fails if the string is not
// a valid semantic version or if it carries a pre-release qualifier or build
// metadata, since such versions must never be published as releases.
func ParseRelease(s string) (Version, error) {
	v, err := Parse(s)
	if err != nil {
		return Version{}, err
	}
	if !v.IsRelease() {
		return Version{}, fmt.Errorf("version %q has a pre-release qualifier and cannot be released", s)
	}
	return v, nil
}

// IsRelease reports whether the version has no pre-release qualifier and no
// build metadata.
func (v Version) IsRelease() bool {
	return v.v.Prerelease() == "" && v.v.Metadata() == ""
}

// Compare returns -1, 0 or 1 when v is less than, equal to or greater than
// o. Numeric components are compared component-wise; a pre-release version
// orders before the release it qualifies.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

// Core returns the version with any qualifier and metadata stripped,
// leaving only the numeric components.
func (v Version) Core() Version {
	core := semver.New(v.v.Major(), v.v.Minor(), v.v.Patch(), "", "")
	return Version{v: core}
}

// BumpMinor returns the next development version: the minor component is
// incremented, the patch component is zeroed and any qualifier is stripped.
func (v Version) BumpMinor() Version {
	next := v.v.IncMinor()
	return Version{v: &next}
}

// WithSuffix returns a copy of the version restamped with the given
// qualifier, e.g. WithSuffix on "1.2.0" with "alpha-2024-01-05" yields
// "1.2.0-alpha-2024-01-05". The result is never a valid release version.
func (v Version) WithSuffix(suffix string) (Version, error) {
	stamped, err := v.v.SetPrerelease(suffix)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version suffix %q: %w", suffix, err)
	}
	return Version{v: &stamped}, nil
}

// String returns the canonical string form of the version.
func (v Version) String() string {
	if v.v == nil {
		return ""
	}
	return v.v.String()
}
