package buildtool

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"relmod-agent/src/cienv"
	"relmod-agent/src/logger"
	"relmod-agent/src/project"
)

// Environment variables passed to host build-tool commands.
const (
	EnvVersion        = "RELMOD_VERSION"
	EnvTarget         = "RELMOD_TARGET"
	EnvAgainstVersion = "RELMOD_AGAINST_VERSION"
	EnvNotesFile      = "RELMOD_NOTES_FILE"
)

// ExecTool runs the command lines declared in release.yml, passing release
// parameters and credentials through the environment.
type ExecTool struct {
	commands project.Commands
	creds    cienv.Credentials
	log      logger.Logger
	// workDir is where commands run; empty means the current directory.
	workDir string
}

var _ Tool = (*ExecTool)(nil)

// NewExecTool creates a Tool backed by the project's configured commands.
func NewExecTool(proj *project.Project, creds cienv.Credentials, log logger.Logger) *ExecTool {
	return &ExecTool{
		commands: proj.Commands,
		creds:    creds,
		log:      log,
	}
}

// UnreleasedDependencies runs the configured listing command and returns one
// dependency coordinate per non-empty output line. An unconfigured command
// means the host has no snapshot concept and the check passes.
func (t *ExecTool) UnreleasedDependencies(ctx context.Context) ([]string, error) {
	if t.commands.ListUnreleasedDeps == "" {
		t.log.Debug("no listUnreleasedDeps command configured, assuming clean dependency graph")
		return nil, nil
	}

	out, err := t.output(ctx, t.commands.ListUnreleasedDeps, nil)
	if err != nil {
		return nil, fmt.Errorf("dependency listing failed: %w", err)
	}

	var deps []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			deps = append(deps, line)
		}
	}
	return deps, nil
}

// RunTests runs the configured test command.
func (t *ExecTool) RunTests(ctx context.Context, target string) error {
	if t.commands.Test == "" {
		return fmt.Errorf("no test command configured in release.yml")
	}
	env := map[string]string{EnvTarget: target}
	if err := t.run(ctx, t.commands.Test, env); err != nil {
		return fmt.Errorf("test suite failed: %w", err)
	}
	return nil
}

// CheckCompatibility runs the configured compatibility command against a
// published version. Hosts without a compatibility tool leave the command
// unconfigured and the step passes.
func (t *ExecTool) CheckCompatibility(ctx context.Context, against string) error {
	if t.commands.CompatCheck == "" {
		t.log.Debug("no compatCheck command configured, skipping compatibility check")
		return nil
	}
	env := map[string]string{EnvAgainstVersion: against}
	if err := t.run(ctx, t.commands.CompatCheck, env); err != nil {
		return fmt.Errorf("binary compatibility check against %s failed: %w", against, err)
	}
	return nil
}

// Publish runs the configured publish command for one version and target.
func (t *ExecTool) Publish(ctx context.Context, version string, target string) error {
	if t.commands.Publish == "" {
		return fmt.Errorf("no publish command configured in release.yml")
	}
	env := map[string]string{
		EnvVersion: version,
		EnvTarget:  target,
	}
	if err := t.run(ctx, t.commands.Publish, env); err != nil {
		return fmt.Errorf("publish of %s failed: %w", version, err)
	}
	return nil
}

// Promote runs the configured promotion command.
func (t *ExecTool) Promote(ctx context.Context, version string, notesPath string) error {
	if t.commands.Promote == "" {
		t.log.Debug("no promote command configured, skipping release promotion")
		return nil
	}
	env := map[string]string{
		EnvVersion:   version,
		EnvNotesFile: notesPath,
	}
	if err := t.run(ctx, t.commands.Promote, env); err != nil {
		return fmt.Errorf("release promotion of %s failed: %w", version, err)
	}
	return nil
}

func (t *ExecTool) run(ctx context.Context, command string, extraEnv map[string]string) error {
	_, err := t.output(ctx, command, extraEnv)
	return err
}

func (t *ExecTool) output(ctx context.Context, command string, extraEnv map[string]string) (string, error) {
	t.log.Debug("running host command: %s", command)

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = t.workDir
	cmd.Env = append(os.Environ(),
		cienv.EnvRegistryToken+"="+t.creds.RegistryToken,
		cienv.EnvReleaseToken+"="+t.creds.ReleaseToken,
		cienv.EnvPGPPassphrase+"="+t.creds.PGPPassphrase,
	)
	for k, v := range extraEnv {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
		}
		return "", err
	}
	return stdout.String(), nil
}
