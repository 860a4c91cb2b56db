package release

import (
	"context"
	"fmt"

	"relmod-agent/src/registry"
	"relmod-agent/src/version"
)

// fakeRegistry implements registry.Client for tests.
type fakeRegistry struct {
	latest    string
	published map[string]bool
	calls     int
	err       error
}

var _ registry.Client = (*fakeRegistry)(nil)

func (f *fakeRegistry) LatestVersion(ctx context.Context, module string) (version.Version, error) {
	f.calls++
	if f.err != nil {
		return version.Version{}, f.err
	}
	if f.latest == "" {
		return version.Version{}, fmt.Errorf("%s: %w", module, registry.ErrModuleNotFound)
	}
	return version.Parse(f.latest)
}

func (f *fakeRegistry) Exists(ctx context.Context, module string, ver string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.published[ver], nil
}

// fakeTool implements buildtool.Tool, recording calls and failing on demand.
type fakeTool struct {
	unreleased   []string
	testRuns     []string // targets RunTests was called with
	testErr      error
	compatWith   []string
	compatErr    error
	publishes    []string // "version@target"
	publishErr   error
	promoted     []string
	promoteErr   error
	promoteNotes []string
}

func (f *fakeTool) UnreleasedDependencies(ctx context.Context) ([]string, error) {
	return f.unreleased, nil
}

func (f *fakeTool) RunTests(ctx context.Context, target string) error {
	f.testRuns = append(f.testRuns, target)
	return f.testErr
}

func (f *fakeTool) CheckCompatibility(ctx context.Context, against string) error {
	f.compatWith = append(f.compatWith, against)
	return f.compatErr
}

func (f *fakeTool) Publish(ctx context.Context, ver string, target string) error {
	f.publishes = append(f.publishes, ver+"@"+target)
	return f.publishErr
}

func (f *fakeTool) Promote(ctx context.Context, ver string, notesPath string) error {
	f.promoted = append(f.promoted, ver)
	f.promoteNotes = append(f.promoteNotes, notesPath)
	return f.promoteErr
}
