package release

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"relmod-agent/src/cienv"
	"relmod-agent/src/journal"
	"relmod-agent/src/logger"
	"relmod-agent/src/notify"
	"relmod-agent/src/project"
)

// fixture bundles a fully wired Runner over fakes.
type fixture struct {
	runner *Runner
	reg    *fakeRegistry
	tool   *fakeTool
	broker *notify.InMemoryBroker
	jrnl   *journal.InMemoryJournal
	proj   *project.Project
}

func newFixture(t *testing.T, env *cienv.Config) *fixture {
	t.Helper()

	proj := testProject()
	proj.NotesDir = t.TempDir()

	reg := &fakeRegistry{}
	tool := &fakeTool{}
	broker := notify.NewInMemoryBroker()
	jrnl := journal.NewInMemoryJournal()

	return &fixture{
		runner: &Runner{
			Env:      env,
			Project:  proj,
			Registry: reg,
			Tool:     tool,
			Notifier: notify.NewPublisher(broker, "module-releases"),
			Journal:  jrnl,
			Log:      logger.NewSilentLogger(),
		},
		reg:    reg,
		tool:   tool,
		broker: broker,
		jrnl:   jrnl,
		proj:   proj,
	}
}

func stableEnv() *cienv.Config {
	return &cienv.Config{
		CI: &cienv.Snapshot{
			Tag:         "v2.0.0",
			Commit:      "abc1234",
			BuildURL:    "https://ci.example.com/builds/512",
			BuildNumber: "512",
		},
		Credentials: cienv.Credentials{
			RegistryToken: "rt",
			ReleaseToken:  "bt",
			PGPPassphrase: "pp",
		},
	}
}

func writeNotes(t *testing.T, f *fixture, version string) {
	t.Helper()
	path := filepath.Join(f.proj.NotesDir, version+".md")
	if err := os.WriteFile(path, []byte("# release notes"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunnerStableRelease(t *testing.T) {
	f := newFixture(t, stableEnv())
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}

	// All eight steps completed in order.
	want := []string{
		"validate-metadata",
		"check-snapshot-dependencies",
		"run-tests",
		"check-binary-compatibility",
		"before-publish",
		"publish-artifacts",
		"after-publish",
		"promote-release",
	}
	if len(res.Completed) != len(want) {
		t.Fatalf("Completed = %v, want %v", res.Completed, want)
	}
	for i := range want {
		if res.Completed[i] != want[i] {
			t.Errorf("Completed[%d] = %v, want %v", i, res.Completed[i], want[i])
		}
	}

	if len(f.tool.publishes) != 1 || f.tool.publishes[0] != "2.0.0@" {
		t.Errorf("publishes = %v, want one publish of 2.0.0", f.tool.publishes)
	}
	if len(f.tool.promoted) != 1 || f.tool.promoted[0] != "2.0.0" {
		t.Errorf("promoted = %v, want [2.0.0]", f.tool.promoted)
	}
	if f.tool.promoteNotes[0] == "" {
		t.Error("promotion ran without the release notes file")
	}

	// Release event published.
	msgs := f.broker.Messages("module-releases")
	if len(msgs) != 1 {
		t.Fatalf("got %d release events, want 1", len(msgs))
	}
	var event notify.ReleaseEvent
	if err := json.Unmarshal(msgs[0].Value, &event); err != nil {
		t.Fatalf("release event payload: %v", err)
	}
	if event.Version != "2.0.0" || event.Flavor != "stable" || event.Commit != "abc1234" {
		t.Errorf("release event = %+v", event)
	}
}

func TestRunnerSkipTests(t *testing.T) {
	f := newFixture(t, stableEnv())
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable, SkipTests: true})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}
	if len(f.tool.testRuns) != 0 {
		t.Errorf("test suite ran %d times despite skip-tests", len(f.tool.testRuns))
	}
}

func TestRunnerCrossBuildPublishes(t *testing.T) {
	f := newFixture(t, stableEnv())
	f.proj.Targets = []string{"linux-amd64", "darwin-arm64"}
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable, CrossBuild: true})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}

	wantPublishes := []string{"2.0.0@linux-amd64", "2.0.0@darwin-arm64"}
	if len(f.tool.publishes) != 2 {
		t.Fatalf("publishes = %v, want %v", f.tool.publishes, wantPublishes)
	}
	for i := range wantPublishes {
		if f.tool.publishes[i] != wantPublishes[i] {
			t.Errorf("publishes[%d] = %v, want %v", i, f.tool.publishes[i], wantPublishes[i])
		}
	}
	// Tests are cross-build eligible too.
	if len(f.tool.testRuns) != 2 {
		t.Errorf("testRuns = %v, want one per target", f.tool.testRuns)
	}
}

func TestRunnerProjectCrossBuildSetting(t *testing.T) {
	f := newFixture(t, stableEnv())
	f.proj.CrossBuild = true
	f.proj.Targets = []string{"linux-amd64", "darwin-arm64"}
	writeNotes(t, f, "2.0.0")

	// No cross-build flag: the project's static setting still enables it.
	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}
	if len(f.tool.publishes) != 2 {
		t.Errorf("publishes = %v, want one per target", f.tool.publishes)
	}
}

func TestRunnerUnreleasedDependenciesFail(t *testing.T) {
	f := newFixture(t, stableEnv())
	f.tool.unreleased = []string{"acme/base:0.3.0-SNAPSHOT"}
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if !res.Failed() {
		t.Fatal("Run() succeeded with unreleased dependencies")
	}

	var stepErr *StepError
	if !errors.As(res.Err, &stepErr) {
		t.Fatalf("Run() error = %T, want *StepError", res.Err)
	}
	if stepErr.Step != "check-snapshot-dependencies" {
		t.Errorf("failing step = %v, want check-snapshot-dependencies", stepErr.Step)
	}
	// Downstream steps never ran.
	if len(f.tool.testRuns) != 0 || len(f.tool.publishes) != 0 {
		t.Error("steps after the dependency check still executed")
	}
}

func TestRunnerTestFailureStopsPublish(t *testing.T) {
	f := newFixture(t, stableEnv())
	f.tool.testErr = errors.New("3 tests failed")
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if !res.Failed() {
		t.Fatal("Run() succeeded despite failing tests")
	}
	if len(f.tool.publishes) != 0 {
		t.Errorf("publishes = %v, want none after a test failure", f.tool.publishes)
	}
	if len(f.broker.Messages("module-releases")) != 0 {
		t.Error("release event published for a failed release")
	}
}

func TestRunnerCompatibilityCheck(t *testing.T) {
	t.Run("checked against latest published", func(t *testing.T) {
		f := newFixture(t, stableEnv())
		f.reg.latest = "1.9.0"
		writeNotes(t, f, "2.0.0")

		res := f.runner.Run(context.Background(), Command{Flavor: Stable})
		if res.Failed() {
			t.Fatalf("Run() failed: %v", res.Err)
		}
		if len(f.tool.compatWith) != 1 || f.tool.compatWith[0] != "1.9.0" {
			t.Errorf("compatWith = %v, want [1.9.0]", f.tool.compatWith)
		}
	})

	t.Run("first release skips check", func(t *testing.T) {
		f := newFixture(t, stableEnv())
		writeNotes(t, f, "2.0.0")

		res := f.runner.Run(context.Background(), Command{Flavor: Stable})
		if res.Failed() {
			t.Fatalf("Run() failed: %v", res.Err)
		}
		if len(f.tool.compatWith) != 0 {
			t.Errorf("compatWith = %v, want no check for a first release", f.tool.compatWith)
		}
	})
}

func TestRunnerMissingCredentialsAbortsBeforeActions(t *testing.T) {
	env := stableEnv()
	env.Credentials.PGPPassphrase = ""
	f := newFixture(t, env)
	writeNotes(t, f, "2.0.0")

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if !res.Failed() {
		t.Fatal("Run() succeeded without signing credentials")
	}

	var stepErr *StepError
	if !errors.As(res.Err, &stepErr) {
		t.Fatalf("Run() error = %T, want *StepError", res.Err)
	}
	if stepErr.Phase != "check" {
		t.Errorf("failure phase = %v, want check", stepErr.Phase)
	}
	// The check pass runs before any action, so even metadata validation's
	// action never executed.
	if len(f.tool.testRuns) != 0 || len(f.tool.publishes) != 0 {
		t.Error("actions ran despite a failed precondition")
	}
}

func TestRunnerStableRequiresNotes(t *testing.T) {
	f := newFixture(t, stableEnv())
	// No notes file written.

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if !res.Failed() {
		t.Fatal("Run() succeeded without release notes")
	}
	var stepErr *StepError
	if !errors.As(res.Err, &stepErr) {
		t.Fatalf("Run() error = %T, want *StepError", res.Err)
	}
	if stepErr.Step != "promote-release" || stepErr.Phase != "check" {
		t.Errorf("failure = %+v, want promote-release check", stepErr)
	}
}

func TestRunnerNightlyToleratesMissingNotes(t *testing.T) {
	env := stableEnv()
	f := newFixture(t, env)
	// No notes file for the date-stamped nightly version.

	res := f.runner.Run(context.Background(), Command{Flavor: Nightly})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}
	if f.tool.promoteNotes[0] != "" {
		t.Errorf("promoteNotes = %v, want empty notes path", f.tool.promoteNotes)
	}
}

func TestRunnerHooksRun(t *testing.T) {
	f := newFixture(t, stableEnv())
	writeNotes(t, f, "2.0.0")

	var order []string
	f.runner.Hooks = Hooks{
		BeforePublish: func(ctx context.Context, st *State) error {
			order = append(order, "before")
			return nil
		},
		AfterPublish: func(ctx context.Context, st *State) error {
			order = append(order, "after")
			return nil
		},
	}

	res := f.runner.Run(context.Background(), Command{Flavor: Stable})
	if res.Failed() {
		t.Fatalf("Run() failed: %v", res.Err)
	}
	if len(order) != 2 || order[0] != "before" || order[1] != "after" {
		t.Errorf("hook order = %v, want [before after]", order)
	}
}

func TestRunnerJournalRecordsOutcome(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture(t, stableEnv())
		writeNotes(t, f, "2.0.0")

		res := f.runner.Run(context.Background(), Command{Flavor: Stable})
		if res.Failed() {
			t.Fatalf("Run() failed: %v", res.Err)
		}
		assertJournalStatus(t, f, journal.StatusSucceeded)
	})

	t.Run("failure", func(t *testing.T) {
		f := newFixture(t, stableEnv())
		f.tool.testErr = errors.New("boom")
		writeNotes(t, f, "2.0.0")

		res := f.runner.Run(context.Background(), Command{Flavor: Stable})
		if !res.Failed() {
			t.Fatal("Run() succeeded, want failure")
		}
		assertJournalStatus(t, f, journal.StatusFailed)
	})
}

func assertJournalStatus(t *testing.T, f *fixture, want string) {
	t.Helper()
	entries := f.jrnl.List()
	if len(entries) != 1 {
		t.Fatalf("journal holds %d entries, want 1", len(entries))
	}
	if entries[0].Status != want {
		t.Errorf("journal status = %v, want %v", entries[0].Status, want)
	}
	if entries[0].Version != "2.0.0" {
		t.Errorf("journal version = %v, want 2.0.0", entries[0].Version)
	}
}
