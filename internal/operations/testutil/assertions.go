package testutil

import (
	"testing"

	"inscompare/internal/operations"
)

// AssertStepStatus verifies a step has the expected status
func AssertStepStatus(t *testing.T, p *operations.OperationState, stageID string, expected operations.StepStatus) {
	t.Helper()
	step, ok := p.GetStep(stageID)
	if !ok {
		t.Fatalf("step %s not found", stageID)
	}
	if step.Status != expected {
		t.Errorf("step %s status = %v, want %v", step.ID, step.Status, expected)
	}
}

// AssertOperationStatus verifies an operation has the expected status
func AssertOperationStatus(t *testing.T, p *operations.OperationState, expected operations.OperationStatusValue) {
	t.Helper()
	if p == nil {
		t.Fatal("operation state is nil")
	}
	if p.Status != expected {
		t.Errorf("operation status = %v, want %v", p.Status, expected)
	}
}

// AssertStageFailed verifies a step failed and kept its error
func AssertStageFailed(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	AssertStepStatus(t, p, stageID, operations.StepStatusFailed)
	step, _ := p.GetStep(stageID)
	if step.Error == nil {
		t.Errorf("step %s has no error", stageID)
	}
}
