package buildtool

import (
	"context"
	"strings"
	"testing"

	"relmod-agent/src/cienv"
	"relmod-agent/src/logger"
	"relmod-agent/src/project"
)

func newTool(t *testing.T, cmds project.Commands) *ExecTool {
	t.Helper()
	proj := &project.Project{Commands: cmds}
	return NewExecTool(proj, cienv.Credentials{}, logger.NewSilentLogger())
}

func TestUnreleasedDependencies(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    int
		wantErr bool
	}{
		{name: "clean graph", command: "true", want: 0},
		{name: "two snapshots", command: `printf 'acme/base:0.3.0-SNAPSHOT\nacme/util:1.0.0-SNAPSHOT\n'`, want: 2},
		{name: "blank lines ignored", command: `printf '\n\nacme/base:0.3.0-SNAPSHOT\n\n'`, want: 1},
		{name: "unconfigured passes", command: "", want: 0},
		{name: "listing failure", command: "exit 3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := newTool(t, project.Commands{ListUnreleasedDeps: tt.command})
			deps, err := tool.UnreleasedDependencies(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnreleasedDependencies() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(deps) != tt.want {
				t.Errorf("UnreleasedDependencies() = %v, want %d entries", deps, tt.want)
			}
		})
	}
}

func TestRunTests(t *testing.T) {
	t.Run("passing suite", func(t *testing.T) {
		tool := newTool(t, project.Commands{Test: "true"})
		if err := tool.RunTests(context.Background(), ""); err != nil {
			t.Errorf("RunTests() unexpected error: %v", err)
		}
	})

	t.Run("failing suite", func(t *testing.T) {
		tool := newTool(t, project.Commands{Test: "false"})
		if err := tool.RunTests(context.Background(), ""); err == nil {
			t.Error("RunTests() succeeded, want error")
		}
	})

	t.Run("unconfigured fails", func(t *testing.T) {
		tool := newTool(t, project.Commands{})
		if err := tool.RunTests(context.Background(), ""); err == nil {
			t.Error("RunTests() with no command succeeded, want error")
		}
	})

	t.Run("target passed through environment", func(t *testing.T) {
		tool := newTool(t, project.Commands{Test: `test "$RELMOD_TARGET" = linux-amd64`})
		if err := tool.RunTests(context.Background(), "linux-amd64"); err != nil {
			t.Errorf("RunTests() did not export %s: %v", EnvTarget, err)
		}
	})
}

func TestPublishEnvironment(t *testing.T) {
	tool := newTool(t, project.Commands{Publish: `test "$RELMOD_VERSION" = 1.2.0`})
	if err := tool.Publish(context.Background(), "1.2.0", ""); err != nil {
		t.Errorf("Publish() did not export %s: %v", EnvVersion, err)
	}
}

func TestCommandStderrSurfaced(t *testing.T) {
	tool := newTool(t, project.Commands{Test: `echo 'compilation broke' >&2; exit 1`})
	err := tool.RunTests(context.Background(), "")
	if err == nil {
		t.Fatal("RunTests() succeeded, want error")
	}
	if got := err.Error(); !strings.Contains(got, "compilation broke") {
		t.Errorf("error %q does not carry the command stderr", got)
	}
}
