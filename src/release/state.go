// Package release implements the release orchestration core: the version
// decision engine, the ordered step pipeline with its check and action
// passes, and the command grammar that selects a release flavor.
package release

import (
	"relmod-agent/src/version"
)

// Flavor selects one of the two predefined release pipelines.
type Flavor string

const (
	Nightly Flavor = "nightly"
	Stable  Flavor = "stable"
)

// State is the mutable release state threaded by reference through every
// step of one pipeline invocation. Each invocation owns its own State; it is
// discarded at completion or failure.
type State struct {
	// Flavor is the selected release flavor.
	Flavor Flavor

	// Current is the resolved version being released. Set by the version
	// decision engine before the pipeline runs.
	Current version.Version

	// Next is the computed next development version.
	Next version.Version

	// SkipTests disables the test-suite step.
	SkipTests bool

	// CrossBuild repeats eligible steps once per configured target.
	CrossBuild bool

	// VersionOverride is the user-supplied version from the command line;
	// empty when none was given.
	VersionOverride string

	// NotesPath is the release notes file resolved for Current; empty when
	// none exists (tolerated for nightly releases).
	NotesPath string
}
