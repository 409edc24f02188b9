package step

import (
	"fmt"
	"strings"
)

// Error codes for the step failure taxonomy.
const (
	// ErrCodeCheckFailed means the precondition check itself failed to run.
	ErrCodeCheckFailed = "CHECK_FAILED"
	// ErrCodeActionFailed means the action's process exited non-zero or
	// could not be started.
	ErrCodeActionFailed = "ACTION_FAILED"
	// ErrCodeVerifyFailed means the verification did not hold after the
	// action completed.
	ErrCodeVerifyFailed = "VERIFY_FAILED"
	// ErrCodeGateUnreachable means a network-gated step could not reach the
	// configured endpoint.
	ErrCodeGateUnreachable = "GATE_UNREACHABLE"
	// ErrCodeAborted means the operator chose to abort the run.
	ErrCodeAborted = "ABORTED"
)

// StepError represents a classified step failure with an actionable
// suggestion for the operator.
type StepError struct {
	Code       string // Error code for categorization
	Message    string // User-friendly error message
	StepID     string // Step ID if applicable
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.StepID != "" {
		return fmt.Sprintf("step %q: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.StepID != "" {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.StepID))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}

	return b.String()
}

// NewCheckFailedError creates an error for a precondition check that could
// not run.
func NewCheckFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeCheckFailed,
		Message:    "precondition check failed to run",
		StepID:     stepID,
		Suggestion: "The step could not determine its current state. This may be a transient error; re-run to retry.",
		Underlying: err,
	}
}

// NewActionFailedError creates an error for an action whose process failed.
func NewActionFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeActionFailed,
		Message:    "install action failed",
		StepID:     stepID,
		Suggestion: "Check the installer output above for details, then retry.",
		Underlying: err,
	}
}

// NewVerifyFailedError creates an error for a verification that did not hold
// after the action completed.
func NewVerifyFailedError(stepID string, err error) *StepError {
	return &StepError{
		Code:       ErrCodeVerifyFailed,
		Message:    "verification failed after action",
		StepID:     stepID,
		Suggestion: "The installer reported success but the tool is still not available. Check PATH and shell profile changes.",
		Underlying: err,
	}
}

// NewGateUnreachableError creates an error for a network-gated step whose
// probe endpoint was unreachable.
func NewGateUnreachableError(stepID, reason string) *StepError {
	return &StepError{
		Code:       ErrCodeGateUnreachable,
		Message:    fmt.Sprintf("private network unreachable (%s)", reason),
		StepID:     stepID,
		Suggestion: "Connect to the VPN and retry.",
	}
}

// NewAbortedError creates an error recording an operator abort.
func NewAbortedError(stepID string) *StepError {
	return &StepError{
		Code:    ErrCodeAborted,
		Message: "run aborted by operator",
		StepID:  stepID,
	}
}
