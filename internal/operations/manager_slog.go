package operations

import (
	"context"
	"log/slog"
	"time"
)

// logOperationStart logs the start of an operation execution
func (r *Runner) logOperationStart(ctx context.Context, operationID string, steps int) {
	r.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.Int("steps", steps))
}

// logOperationComplete logs the completion of an operation execution
func (r *Runner) logOperationComplete(ctx context.Context, operationID string, duration time.Duration, status string) {
	r.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.String("status", status),
		slog.Duration("duration", duration))
}

// logOperationError logs an operation error
func (r *Runner) logOperationError(ctx context.Context, operationID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	r.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("error", errorMsg))
}

func (r *Runner) logStageStart(ctx context.Context, operationID, stepID string) {
	r.logger.InfoContext(ctx, "step_start",
		slog.String("operation_id", operationID),
		slog.String("step", stepID))
}

func (r *Runner) logStageComplete(ctx context.Context, operationID, stepID string, duration time.Duration) {
	r.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Duration("duration", duration))
}

func (r *Runner) logStageError(ctx context.Context, operationID, stepID string, err error) {
	errorMsg := "unknown error"
	if err != nil {
		errorMsg = err.Error()
	}
	r.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error", errorMsg))
}
