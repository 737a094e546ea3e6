package operations

import (
	"context"
	"log/slog"
	"time"

	"inscompare/internal/infrastructure"
)

// StepObserver is notified with the wall time of every step that ran
type StepObserver interface {
	ObserveStep(step string, d time.Duration)
}

// Runner executes steps strictly in order. The first failure aborts the
// run; the remaining steps are marked skipped.
type Runner struct {
	logger   *slog.Logger
	observer StepObserver
}

// NewRunner creates a runner. observer may be nil.
func NewRunner(logger *slog.Logger, observer StepObserver) *Runner {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Runner{logger: logger, observer: observer}
}

// Run executes steps against state. The context is checked before each
// step, so a cancelled run stops at the next step boundary.
func (r *Runner) Run(ctx context.Context, state *OperationState, steps ...Step) error {
	state.Steps = make([]*StepState, 0, len(steps))
	for _, s := range steps {
		state.Steps = append(state.Steps, NewStepState(s.ID(), s.Name()))
	}

	state.Start()
	r.logOperationStart(ctx, state.ID, len(steps))

	for i, step := range steps {
		stepState := state.Steps[i]

		if err := ctx.Err(); err != nil {
			opErr := NewCancellationError(step.ID(), err)
			r.skipFrom(state, i, "operation cancelled")
			state.Cancel(opErr)
			r.logOperationError(ctx, state.ID, opErr)
			return opErr
		}

		stepState.Start()
		r.logStageStart(ctx, state.ID, step.ID())

		err := step.Execute(ctx, state)
		if err != nil {
			stepState.Fail(err)
		} else {
			stepState.Complete()
		}
		if r.observer != nil {
			r.observer.ObserveStep(step.ID(), stepState.Duration())
		}

		if err != nil {
			opErr := NewExecutionError(step.ID(), err)
			r.logStageError(ctx, state.ID, step.ID(), err)
			r.skipFrom(state, i+1, "previous step failed")
			state.Fail(opErr)
			r.logOperationError(ctx, state.ID, opErr)
			return opErr
		}
		r.logStageComplete(ctx, state.ID, step.ID(), stepState.Duration())
	}

	state.Complete()
	r.logOperationComplete(ctx, state.ID, state.EndTime.Sub(state.StartTime), string(state.Status))
	return nil
}

func (r *Runner) skipFrom(state *OperationState, from int, reason string) {
	for _, s := range state.Steps[from:] {
		s.Skip(reason)
	}
}
