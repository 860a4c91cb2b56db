package release

import (
	"context"
	"errors"

	"relmod-agent/src/logger"
)

// Result is the outcome of one pipeline invocation. A failure carries the
// triggering error and the state as it was when the pipeline halted; the
// dispatcher decides what to do with it. Nothing about the host is mutated
// on the way out, so a failed command can simply be retried.
type Result struct {
	State *State
	// Completed lists the names of steps whose action finished, in order.
	Completed []string
	// Err is nil on success. On failure it is a *StepError identifying the
	// failing step.
	Err error
}

// Failed reports whether the pipeline halted on an error.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Pipeline executes an ordered sequence of steps to completion or first
// failure. Execution is strictly sequential: no step begins before the
// previous one returned, and cross-build repetitions of a step run one
// target at a time.
type Pipeline struct {
	steps   []Step
	targets []string
	log     logger.Logger
}

// NewPipeline builds a pipeline over the given steps. targets lists the
// cross-build targets used when the state enables cross-building.
func NewPipeline(steps []Step, targets []string, log logger.Logger) *Pipeline {
	return &Pipeline{steps: steps, targets: targets, log: log}
}

// Run executes the check pass and then the action pass.
//
// Check pass: every step's check runs against the initial state before any
// action executes. A failing check aborts the whole pipeline; no action
// runs at all.
//
// Action pass: actions run in declared order. The first failure halts the
// pipeline; later steps are never attempted.
func (p *Pipeline) Run(ctx context.Context, st *State) Result {
	res := Result{State: st}

	for _, step := range p.steps {
		if step.Check == nil {
			continue
		}
		if err := step.Check(ctx, st); err != nil {
			p.log.Error("precondition for step %q not met: %v", step.Name, err)
			res.Err = &StepError{Step: step.Name, Phase: "check", Err: err}
			return res
		}
	}

	for _, step := range p.steps {
		p.log.Info("running step %q", step.Name)
		if err := p.runAction(ctx, step, st); err != nil {
			p.log.Error("step %q failed: %v", step.Name, err)
			res.Err = &StepError{Step: step.Name, Phase: "action", Err: err}
			return res
		}
		res.Completed = append(res.Completed, step.Name)
	}

	return res
}

func (p *Pipeline) runAction(ctx context.Context, step Step, st *State) error {
	if !step.crossBuildable() {
		if step.Action == nil {
			return errors.New("step has no action configured")
		}
		return step.Action(ctx, st)
	}

	if !st.CrossBuild || len(p.targets) == 0 {
		return step.TargetAction(ctx, st, "")
	}

	for _, target := range p.targets {
		p.log.Info("step %q: target %s", step.Name, target)
		if err := step.TargetAction(ctx, st, target); err != nil {
			return err
		}
	}
	return nil
}
