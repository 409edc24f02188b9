// Package envfile provides steps for project-local configuration files:
// the .env file and the local settings module.
package envfile

import (
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// EnvFileStep creates the project .env file with one default key and one
// commented alternative, and repairs the key if the file exists without it.
type EnvFileStep struct {
	path        string
	key         string
	value       string
	alternative string
	id          step.StepID
	fs          ports.FileSystem
}

// NewEnvFileStep creates a new EnvFileStep.
func NewEnvFileStep(path, key, value, alternative string, fs ports.FileSystem) *EnvFileStep {
	return &EnvFileStep{
		path:        path,
		key:         key,
		value:       value,
		alternative: alternative,
		id:          step.MustNewStepID("envfile:create:" + path),
		fs:          fs,
	}
}

// ID returns the step identifier.
func (s *EnvFileStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *EnvFileStep) Label() string {
	return fmt.Sprintf("%s with %s", s.path, s.key)
}

// Criticality returns the failure policy.
func (s *EnvFileStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check is satisfied when the file exists and defines the default key.
// .env files are key=value, so the ini parser reads them directly; the
// commented alternative line is a comment to it.
func (s *EnvFileStep) Check(_ step.RunContext) (step.Status, error) {
	if !s.fs.Exists(s.path) {
		return step.StatusNeedsApply, nil
	}

	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		return step.StatusUnknown, err
	}

	cfg, err := ini.Load(data)
	if err != nil {
		return step.StatusUnknown, fmt.Errorf("parse %s: %w", s.path, err)
	}

	if cfg.Section("").HasKey(s.key) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply writes the file, or appends the missing key to an existing one.
// Existing content is never rewritten.
func (s *EnvFileStep) Apply(_ step.RunContext) error {
	if !s.fs.Exists(s.path) {
		content := fmt.Sprintf("%s=%s\n# %s\n", s.key, s.value, s.alternative)
		return s.fs.WriteFile(s.path, []byte(content), 0o600)
	}

	line := fmt.Sprintf("%s=%s\n", s.key, s.value)
	return s.fs.AppendFile(s.path, []byte(line), 0o600)
}

// Verify re-checks the file.
func (s *EnvFileStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// SettingsFileStep creates an empty local settings file if absent.
type SettingsFileStep struct {
	path string
	id   step.StepID
	fs   ports.FileSystem
}

// NewSettingsFileStep creates a new SettingsFileStep.
func NewSettingsFileStep(path string, fs ports.FileSystem) *SettingsFileStep {
	return &SettingsFileStep{
		path: path,
		id:   step.MustNewStepID("envfile:settings:" + path),
		fs:   fs,
	}
}

// ID returns the step identifier.
func (s *SettingsFileStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *SettingsFileStep) Label() string {
	return fmt.Sprintf("local settings file %s", s.path)
}

// Criticality returns the failure policy.
func (s *SettingsFileStep) Criticality() step.Criticality {
	return step.Advisory
}

// Check is satisfied when the file exists, whatever its content.
func (s *SettingsFileStep) Check(_ step.RunContext) (step.Status, error) {
	if s.fs.Exists(s.path) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply creates the empty file.
func (s *SettingsFileStep) Apply(_ step.RunContext) error {
	return s.fs.WriteFile(s.path, []byte{}, 0o644)
}

// Verify re-checks existence.
func (s *SettingsFileStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
