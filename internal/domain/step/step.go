// Package step defines the provisioning step model: an idempotent unit with
// a precondition check, a side-effecting action, and a post-action
// verification, plus a per-step failure policy.
package step

// Criticality is the per-step failure policy.
type Criticality string

const (
	// Blocking means a failure suspends the run until the operator decides
	// how to proceed.
	Blocking Criticality = "blocking"
	// Advisory means a failure is logged and the run continues immediately.
	Advisory Criticality = "advisory"
)

// String returns the string representation of the criticality.
func (c Criticality) String() string {
	return string(c)
}

// Step represents one provisioning unit in the ordered sequence.
// Check answers "is this already done", Apply does it, and Verify answers
// "did it work". Apply must only run when Check reports StatusNeedsApply;
// Verify always runs after Apply and determines the recorded outcome.
type Step interface {
	// ID returns the unique identifier for this step.
	ID() StepID

	// Label returns the human-readable step label.
	Label() string

	// Criticality returns the failure policy for this step.
	Criticality() Criticality

	// Check determines whether the step's desired state already holds.
	Check(ctx RunContext) (Status, error)

	// Apply executes the step's action, shelling out to external installers.
	// It should be idempotent: converging installers may be re-run.
	Apply(ctx RunContext) error

	// Verify re-checks the desired state after Apply.
	Verify(ctx RunContext) (Status, error)
}

// NetworkGatedStep extends Step for steps that require the private network.
// The runner probes the configured endpoint before applying such a step and
// treats an unreachable network as a step failure under the step's
// criticality.
type NetworkGatedStep interface {
	Step

	// NetworkGated returns true if the step must not apply without
	// private-network reachability.
	NetworkGated() bool
}

// AsNetworkGated attempts to cast a step to NetworkGatedStep.
// Returns nil if the step is not gated.
func AsNetworkGated(s Step) NetworkGatedStep {
	if g, ok := s.(NetworkGatedStep); ok && g.NetworkGated() {
		return g
	}
	return nil
}
