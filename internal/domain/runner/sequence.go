// Package runner handles ordered step execution and outcome reporting.
package runner

import (
	"fmt"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
)

// Sequence is the ordered, immutable list of steps for one run.
// Built once at program start; the runner never reorders or mutates it.
type Sequence struct {
	steps []step.Step
}

// NewSequence creates a Sequence, rejecting duplicate step IDs.
func NewSequence(steps ...step.Step) (*Sequence, error) {
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		id := s.ID().String()
		if seen[id] {
			return nil, fmt.Errorf("duplicate step ID %q in sequence", id)
		}
		seen[id] = true
	}

	copied := make([]step.Step, len(steps))
	copy(copied, steps)
	return &Sequence{steps: copied}, nil
}

// MustNewSequence creates a Sequence, panicking on duplicate IDs.
// Use for statically assembled sequences that should never collide.
func MustNewSequence(steps ...step.Step) *Sequence {
	seq, err := NewSequence(steps...)
	if err != nil {
		panic(err)
	}
	return seq
}

// Steps returns the steps in execution order.
func (s *Sequence) Steps() []step.Step {
	return s.steps
}

// Len returns the number of steps.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// IsEmpty returns true if there are no steps.
func (s *Sequence) IsEmpty() bool {
	return len(s.steps) == 0
}
