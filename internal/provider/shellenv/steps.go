// Package shellenv manages the shell profile lines the toolchain needs,
// inside an explicit managed block so repeated runs never duplicate them.
package shellenv

import (
	"fmt"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// ProfileStep keeps the managed block in the shell profile in sync with the
// configured lines.
type ProfileStep struct {
	profilePath string
	lines       []string
	id          step.StepID
	fs          ports.FileSystem
}

// NewProfileStep creates a new ProfileStep.
func NewProfileStep(profilePath string, lines []string, fs ports.FileSystem) *ProfileStep {
	return &ProfileStep{
		profilePath: ports.ExpandPath(profilePath),
		lines:       lines,
		id:          step.MustNewStepID("shellenv:profile"),
		fs:          fs,
	}
}

// ID returns the step identifier.
func (s *ProfileStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *ProfileStep) Label() string {
	return fmt.Sprintf("shell profile %s", s.profilePath)
}

// Criticality returns the failure policy. The toolchain is unusable in new
// shells without these lines, so this blocks.
func (s *ProfileStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check compares the managed block against the configured lines.
func (s *ProfileStep) Check(_ step.RunContext) (step.Status, error) {
	if len(s.lines) == 0 {
		return step.StatusSatisfied, nil
	}

	if !s.fs.Exists(s.profilePath) {
		return step.StatusNeedsApply, nil
	}

	data, err := s.fs.ReadFile(s.profilePath)
	if err != nil {
		return step.StatusUnknown, err
	}

	if ReadManagedBlock(string(data)) == renderBlock(s.lines) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply writes the managed block, appending to a fresh profile or replacing
// a stale block in place. Content outside the block is left untouched.
func (s *ProfileStep) Apply(_ step.RunContext) error {
	var content string
	if s.fs.Exists(s.profilePath) {
		data, err := s.fs.ReadFile(s.profilePath)
		if err != nil {
			return err
		}
		content = string(data)
	}

	updated := WriteManagedBlock(content, renderBlock(s.lines))
	return s.fs.WriteFile(s.profilePath, []byte(updated), 0o644)
}

// Verify re-checks the managed block.
func (s *ProfileStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
