package runner

import (
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
)

// Outcome classifies how a step ended.
type Outcome string

const (
	// OutcomeSkipped means the precondition already held; the action did
	// not run.
	OutcomeSkipped Outcome = "skipped-already-satisfied"
	// OutcomeSucceeded means the action ran and verification held.
	OutcomeSucceeded Outcome = "succeeded"
	// OutcomeFailedAcknowledged means a blocking step failed and the
	// operator chose to continue.
	OutcomeFailedAcknowledged Outcome = "failed-acknowledged"
	// OutcomeFailedAdvisory means an advisory step failed; the run
	// continued without pausing.
	OutcomeFailedAdvisory Outcome = "failed-advisory"
	// OutcomeAborted means the operator chose to abort on this step.
	OutcomeAborted Outcome = "aborted"
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	return string(o)
}

// Failed returns true if the outcome records a failure.
func (o Outcome) Failed() bool {
	switch o {
	case OutcomeFailedAcknowledged, OutcomeFailedAdvisory, OutcomeAborted:
		return true
	case OutcomeSkipped, OutcomeSucceeded:
		return false
	}
	return false
}

// Record captures the outcome of one step.
type Record struct {
	stepID   step.StepID
	label    string
	outcome  Outcome
	err      error
	duration time.Duration
	attempts int
}

// NewRecord creates a new Record.
func NewRecord(stepID step.StepID, label string, outcome Outcome, err error) Record {
	return Record{
		stepID:  stepID,
		label:   label,
		outcome: outcome,
		err:     err,
	}
}

// StepID returns the ID of the recorded step.
func (r Record) StepID() step.StepID {
	return r.stepID
}

// Label returns the human-readable step label.
func (r Record) Label() string {
	return r.label
}

// Outcome returns the recorded outcome.
func (r Record) Outcome() Outcome {
	return r.outcome
}

// Error returns the failure, if any.
func (r Record) Error() error {
	return r.err
}

// Duration returns how long the step took, including retries.
func (r Record) Duration() time.Duration {
	return r.duration
}

// Attempts returns how many times the action ran (0 for skipped steps).
func (r Record) Attempts() int {
	return r.attempts
}

// WithDuration returns a new Record with duration set.
func (r Record) WithDuration(d time.Duration) Record {
	r.duration = d
	return r
}

// WithAttempts returns a new Record with the attempt count set.
func (r Record) WithAttempts(n int) Record {
	r.attempts = n
	return r
}

// Summary provides aggregate statistics about a run.
type Summary struct {
	Total        int
	Skipped      int
	Succeeded    int
	Acknowledged int
	Advisory     int
	Aborted      int
}

// Report is the append-only record of one run. It is held in memory only and
// printed at the end of the run; nothing is persisted.
type Report struct {
	runID   uuid.UUID
	started time.Time
	records []Record
}

// NewReport creates an empty Report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		runID:   uuid.New(),
		started: time.Now(),
		records: make([]Record, 0),
	}
}

// RunID returns the unique identifier of this run.
func (r *Report) RunID() uuid.UUID {
	return r.runID
}

// Started returns when the run began.
func (r *Report) Started() time.Time {
	return r.started
}

// Add appends a record. Records are never removed or rewritten.
func (r *Report) Add(rec Record) {
	r.records = append(r.records, rec)
}

// Records returns all records in execution order.
func (r *Report) Records() []Record {
	return r.records
}

// Len returns the number of records.
func (r *Report) Len() int {
	return len(r.records)
}

// AllSatisfied returns true if every step was skipped as already satisfied.
// A second run over unchanged state should report this.
func (r *Report) AllSatisfied() bool {
	for _, rec := range r.records {
		if rec.outcome != OutcomeSkipped {
			return false
		}
	}
	return len(r.records) > 0
}

// HasFailures returns true if any record is a failure.
func (r *Report) HasFailures() bool {
	for _, rec := range r.records {
		if rec.outcome.Failed() {
			return true
		}
	}
	return false
}

// Summary returns aggregate statistics.
func (r *Report) Summary() Summary {
	summary := Summary{Total: len(r.records)}
	for _, rec := range r.records {
		switch rec.outcome {
		case OutcomeSkipped:
			summary.Skipped++
		case OutcomeSucceeded:
			summary.Succeeded++
		case OutcomeFailedAcknowledged:
			summary.Acknowledged++
		case OutcomeFailedAdvisory:
			summary.Advisory++
		case OutcomeAborted:
			summary.Aborted++
		}
	}
	return summary
}
