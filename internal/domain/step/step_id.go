package step

import (
	"errors"
	"regexp"
	"strings"
)

// StepID uniquely identifies a step within a sequence.
// Format: tool:action:resource (e.g., "pyenv:install:3.12.4")
type StepID struct {
	value string
}

// Errors for StepID validation.
var (
	ErrEmptyStepID   = errors.New("step ID cannot be empty")
	ErrInvalidStepID = errors.New("step ID format invalid: must be alphanumeric with colons, dots, hyphens, underscores, or slashes")
)

// stepIDPattern validates step ID format.
// Allows: alphanumeric, dots, hyphens, underscores, slashes, and @,
// separated by colons. Resource segments may name files (".env") or
// versioned formulae ("openssl@3"). Must not start or end with a colon,
// no spaces.
var stepIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._/@-]+(?::[a-zA-Z0-9._/@-]+)*$`)

// NewStepID creates a new StepID from a string.
func NewStepID(value string) (StepID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StepID{}, ErrEmptyStepID
	}

	if !stepIDPattern.MatchString(trimmed) {
		return StepID{}, ErrInvalidStepID
	}

	return StepID{value: trimmed}, nil
}

// MustNewStepID creates a new StepID from a string, panicking on error.
// Use this for compile-time known values that should never fail validation.
func MustNewStepID(value string) StepID {
	id, err := NewStepID(value)
	if err != nil {
		panic("invalid step ID: " + value + ": " + err.Error())
	}
	return id
}

// String returns the string representation.
func (id StepID) String() string {
	return id.value
}

// Equals checks equality with another StepID.
func (id StepID) Equals(other StepID) bool {
	return id.value == other.value
}

// Tool extracts the tool name (first segment).
func (id StepID) Tool() string {
	parts := strings.SplitN(id.value, ":", 2)
	return parts[0]
}

// IsZero returns true if this is a zero-value StepID.
func (id StepID) IsZero() bool {
	return id.value == ""
}
