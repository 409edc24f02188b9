package runner

import (
	"context"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
)

// PlanEntry describes what a run would do for one step.
type PlanEntry struct {
	stepID      step.StepID
	label       string
	status      step.Status
	criticality step.Criticality
	checkErr    error
}

// StepID returns the step identifier.
func (e PlanEntry) StepID() step.StepID {
	return e.stepID
}

// Label returns the human-readable step label.
func (e PlanEntry) Label() string {
	return e.label
}

// Status returns the precondition result.
func (e PlanEntry) Status() step.Status {
	return e.status
}

// Criticality returns the step's failure policy.
func (e PlanEntry) Criticality() step.Criticality {
	return e.criticality
}

// CheckError returns the check failure, if the precondition could not run.
func (e PlanEntry) CheckError() error {
	return e.checkErr
}

// Plan evaluates every precondition without running any action.
// Steps whose checks fail are reported as StatusUnknown with the error
// attached; planning never prompts and never halts.
func (r *Runner) Plan(ctx context.Context, seq *Sequence) ([]PlanEntry, error) {
	entries := make([]PlanEntry, 0, seq.Len())
	runCtx := step.NewRunContext(ctx).WithDryRun(true)

	for _, s := range seq.Steps() {
		select {
		case <-ctx.Done():
			return entries, ctx.Err()
		default:
		}

		entry := PlanEntry{
			stepID:      s.ID(),
			label:       s.Label(),
			criticality: s.Criticality(),
		}

		status, err := s.Check(runCtx)
		if err != nil {
			entry.status = step.StatusUnknown
			entry.checkErr = err
		} else {
			entry.status = status
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
