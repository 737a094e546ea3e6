package testutil

import (
	"context"
	"time"

	"inscompare/internal/operations"
)

// MockStage is a configurable mock implementation of the step interface
type MockStage struct {
	IDValue   string
	NameValue string

	ExecuteFunc func(ctx context.Context, state *operations.OperationState) error

	ExecuteCalls int
}

// ID returns the step ID
func (m *MockStage) ID() string {
	return m.IDValue
}

// Name returns the step name
func (m *MockStage) Name() string {
	return m.NameValue
}

// Execute runs the mock execute function
func (m *MockStage) Execute(ctx context.Context, state *operations.OperationState) error {
	m.ExecuteCalls++
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state)
	}
	return nil
}

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id string) *MockStage {
	return &MockStage{IDValue: id, NameValue: id}
}

// CreateFailingStage creates a step that always returns err
func CreateFailingStage(id string, err error) *MockStage {
	return &MockStage{
		IDValue:   id,
		NameValue: id,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}

// RecordingObserver collects the step durations reported by a runner
type RecordingObserver struct {
	Steps []string
}

// ObserveStep records the step ID
func (o *RecordingObserver) ObserveStep(step string, _ time.Duration) {
	o.Steps = append(o.Steps, step)
}
