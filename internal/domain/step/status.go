package step

// Status represents the result of a precondition or verification check.
type Status string

const (
	// StatusSatisfied indicates the step's desired state already holds.
	StatusSatisfied Status = "satisfied"
	// StatusNeedsApply indicates the step's action must run.
	StatusNeedsApply Status = "needs-apply"
	// StatusUnknown indicates the state could not be determined, typically
	// because the check itself failed to run.
	StatusUnknown Status = "unknown"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Satisfied returns true if no action is needed.
func (s Status) Satisfied() bool {
	return s == StatusSatisfied
}
