package prompt

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// Policy selects how a non-interactive run answers blocking failures.
type Policy string

const (
	// PolicyContinue acknowledges every failure and keeps going.
	PolicyContinue Policy = "continue"
	// PolicyAbort aborts the run on the first blocking failure.
	PolicyAbort Policy = "abort"
	// PolicyRetry retries a failed step up to the configured limit, then
	// continues.
	PolicyRetry Policy = "retry"
)

// ParsePolicy validates a policy name.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyContinue, PolicyAbort, PolicyRetry:
		return Policy(value), nil
	default:
		return "", fmt.Errorf("unknown prompt policy %q (want continue, abort, or retry)", value)
	}
}

// PolicyPrompter supplies automated decisions so unattended runs never block
// on operator input.
type PolicyPrompter struct {
	policy     Policy
	maxRetries int
}

// NewPolicyPrompter creates a prompter for the given policy.
// maxRetries only applies to PolicyRetry.
func NewPolicyPrompter(policy Policy, maxRetries int) *PolicyPrompter {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &PolicyPrompter{
		policy:     policy,
		maxRetries: maxRetries,
	}
}

// Ack answers per the configured policy without waiting.
func (p *PolicyPrompter) Ack(ctx context.Context, failure ports.StepFailure) (ports.Decision, error) {
	if err := ctx.Err(); err != nil {
		return ports.DecisionAbort, err
	}

	switch p.policy {
	case PolicyAbort:
		return ports.DecisionAbort, nil
	case PolicyRetry:
		if failure.Attempt <= p.maxRetries {
			return ports.DecisionRetry, nil
		}
		return ports.DecisionContinue, nil
	default:
		return ports.DecisionContinue, nil
	}
}

// Ensure PolicyPrompter implements ports.Prompter.
var _ ports.Prompter = (*PolicyPrompter)(nil)
