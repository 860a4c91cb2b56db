// Package buildtool defines the boundary to the host build tool. The
// release pipeline treats every operation here as opaque and possibly
// failing; the implementation shells out to the commands declared in
// release.yml.
package buildtool

import (
	"context"
)

// Tool is the host build-tool contract the release steps call.
type Tool interface {
	// UnreleasedDependencies returns the module's unreleased (snapshot)
	// dependencies. A non-empty result fails the dependency check step.
	UnreleasedDependencies(ctx context.Context) ([]string, error)

	// RunTests runs the test suite, optionally for one cross-build target.
	// target is empty when cross-building is disabled.
	RunTests(ctx context.Context, target string) error

	// CheckCompatibility runs the binary-compatibility check against a
	// previously published version.
	CheckCompatibility(ctx context.Context, against string) error

	// Publish signs and publishes artifacts for the given version,
	// optionally for one cross-build target.
	Publish(ctx context.Context, version string, target string) error

	// Promote triggers repository-side release promotion, attaching the
	// release notes file when one exists (notesPath may be empty).
	Promote(ctx context.Context, version string, notesPath string) error
}
