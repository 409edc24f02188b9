package step

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStepError_Error(t *testing.T) {
	err := NewActionFailedError("pyenv:install", fmt.Errorf("exit status 1"))

	if !strings.Contains(err.Error(), "pyenv:install") {
		t.Errorf("Error() = %q, want step ID included", err.Error())
	}
	if !strings.Contains(err.Error(), "install action failed") {
		t.Errorf("Error() = %q, want message included", err.Error())
	}
}

func TestStepError_ErrorWithoutStepID(t *testing.T) {
	err := &StepError{Code: ErrCodeActionFailed, Message: "install action failed"}

	if err.Error() != "install action failed" {
		t.Errorf("Error() = %q, want bare message", err.Error())
	}
}

func TestStepError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("exit status 1")
	err := NewCheckFailedError("brew:bootstrap", underlying)

	if !errors.Is(err, underlying) {
		t.Error("errors.Is did not find the underlying error")
	}
}

func TestStepError_Format(t *testing.T) {
	err := NewVerifyFailedError("poetry:install", fmt.Errorf("poetry not on PATH"))
	formatted := err.Format()

	for _, want := range []string{ErrCodeVerifyFailed, "poetry:install", "Suggestion:", "Cause:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format() missing %q in %q", want, formatted)
		}
	}
}

func TestNewGateUnreachableError(t *testing.T) {
	err := NewGateUnreachableError("gcloud:install", "timeout")

	if err.Code != ErrCodeGateUnreachable {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeGateUnreachable)
	}
	if !strings.Contains(err.Message, "timeout") {
		t.Errorf("Message = %q, want probe reason included", err.Message)
	}
	if err.Suggestion == "" {
		t.Error("gate errors should carry a suggestion")
	}
}

func TestNewAbortedError(t *testing.T) {
	err := NewAbortedError("java:runtime")

	if err.Code != ErrCodeAborted {
		t.Errorf("Code = %q, want %q", err.Code, ErrCodeAborted)
	}
	var stepErr *StepError
	if !errors.As(error(err), &stepErr) {
		t.Error("errors.As failed for *StepError")
	}
}
