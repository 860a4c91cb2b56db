package release

import (
	"context"
	"fmt"
	"time"

	"relmod-agent/src/buildtool"
	"relmod-agent/src/cienv"
	"relmod-agent/src/journal"
	"relmod-agent/src/logger"
	"relmod-agent/src/notify"
	"relmod-agent/src/project"
	"relmod-agent/src/registry"
)

// Runner wires one release invocation together: it resolves the version,
// builds the flavor's pipeline, runs it and reports the Result. A Runner is
// single-invocation-at-a-time; give each invocation its own State (Run does).
type Runner struct {
	Env      *cienv.Config
	Project  *project.Project
	Registry registry.Client
	Tool     buildtool.Tool
	Notifier *notify.Publisher
	Hooks    Hooks
	// Journal is optional; nil disables attempt recording.
	Journal journal.Journal
	Log     logger.Logger
}

// Run executes the release described by cmd. The returned Result is also a
// failure report: on error nothing is retried automatically and the caller
// may rerun the same command once the underlying issue is fixed.
func (r *Runner) Run(ctx context.Context, cmd Command) Result {
	st := &State{
		Flavor:          cmd.Flavor,
		SkipTests:       cmd.SkipTests,
		CrossBuild:      cmd.CrossBuild || r.Project.CrossBuild,
		VersionOverride: cmd.VersionOverride,
	}

	decider := &Decider{Env: r.Env, Registry: r.Registry, Log: r.Log}
	if err := decider.Decide(ctx, r.Project, st); err != nil {
		return Result{State: st, Err: err}
	}

	attemptID := r.recordBegin(ctx, st)

	pipeline := NewPipeline(
		Steps(r.Env, r.Project, r.Registry, r.Tool, r.Hooks, r.Notifier, r.Log),
		r.Project.Targets,
		r.Log,
	)
	res := pipeline.Run(ctx, st)

	r.recordFinish(ctx, attemptID, res)
	return res
}

func (r *Runner) recordBegin(ctx context.Context, st *State) string {
	if r.Journal == nil {
		return ""
	}

	id := fmt.Sprintf("%s@%s-%d", r.Project.Module, st.Current, time.Now().UnixNano())
	entry := journal.Entry{
		ID:      id,
		Module:  r.Project.Module,
		Version: st.Current.String(),
		Flavor:  string(st.Flavor),
	}
	if r.Env.CI != nil {
		entry.Branch = r.Env.CI.Branch
		entry.Commit = r.Env.CI.Commit
	}

	if err := r.Journal.Begin(ctx, entry); err != nil {
		// The journal is advisory; a broken audit trail must not block a
		// release.
		r.Log.Error("failed to record release attempt: %v", err)
		return ""
	}
	return id
}

func (r *Runner) recordFinish(ctx context.Context, id string, res Result) {
	if r.Journal == nil || id == "" {
		return
	}

	status, errMsg := journal.StatusSucceeded, ""
	if res.Failed() {
		status, errMsg = journal.StatusFailed, res.Err.Error()
	}
	if err := r.Journal.Finish(ctx, id, status, errMsg); err != nil {
		r.Log.Error("failed to record release outcome: %v", err)
	}
}
