package ports

import "context"

// Decision is the operator's response to a blocking step failure.
type Decision int

const (
	// DecisionRetry re-attempts the failed step's action and verification.
	DecisionRetry Decision = iota
	// DecisionContinue acknowledges the failure and moves to the next step.
	DecisionContinue
	// DecisionAbort ends the run; remaining steps are not executed.
	DecisionAbort
)

// String returns the string representation of the decision.
func (d Decision) String() string {
	switch d {
	case DecisionRetry:
		return "retry"
	case DecisionContinue:
		return "continue"
	case DecisionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// StepFailure describes a failed step presented to the operator.
type StepFailure struct {
	StepID  string
	Label   string
	Attempt int
	Err     error
}

// Prompter obtains a recovery decision after a blocking step fails.
// Interactive implementations block on operator input but must honor context
// cancellation; non-interactive implementations apply a configured policy.
type Prompter interface {
	Ack(ctx context.Context, failure StepFailure) (Decision, error)
}
