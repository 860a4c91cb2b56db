package release

import (
	"context"
	"fmt"
)

// CheckFunc is a side-effect-free precondition probe for one step. All
// checks run before any action executes.
type CheckFunc func(ctx context.Context, st *State) error

// ActionFunc is the effectful operation of a step that runs exactly once.
type ActionFunc func(ctx context.Context, st *State) error

// TargetActionFunc is the effectful operation of a cross-build-eligible
// step. When cross-building is enabled it runs once per configured target,
// sequentially; otherwise it runs once with an empty target.
type TargetActionFunc func(ctx context.Context, st *State, target string) error

// Step is a named, independently failable unit of release work. A step has
// no identity beyond its name and position. Exactly one of Action and
// TargetAction is set; which one acts as the cross-build eligibility tag.
type Step struct {
	Name         string
	Check        CheckFunc
	Action       ActionFunc
	TargetAction TargetActionFunc
}

// crossBuildable reports whether the step's action repeats per target.
func (s Step) crossBuildable() bool {
	return s.TargetAction != nil
}

// StepError identifies which step failed and in which phase.
type StepError struct {
	Step  string
	Phase string // "check" or "action"
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed during %s: %v", e.Step, e.Phase, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
