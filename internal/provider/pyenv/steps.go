// Package pyenv provides steps for the pyenv version manager and the Python
// toolchain it manages.
package pyenv

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// installerScript is the official pyenv installer one-liner.
const installerScript = `curl -fsSL https://pyenv.run | bash`

// InstallStep installs pyenv itself.
type InstallStep struct {
	id     step.StepID
	runner ports.CommandRunner
}

// NewInstallStep creates a new InstallStep.
func NewInstallStep(runner ports.CommandRunner) *InstallStep {
	return &InstallStep{
		id:     step.MustNewStepID("pyenv:install"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *InstallStep) Label() string {
	return "pyenv version manager"
}

// Criticality returns the failure policy.
func (s *InstallStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check determines if pyenv is already installed.
func (s *InstallStep) Check(ctx step.RunContext) (step.Status, error) {
	return commandutil.ToolStatus(ctx.Context(), s.runner, "pyenv", "--version")
}

// Apply runs the official installer.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.RunScript(ctx.Context(), installerScript)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("pyenv installer failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installation.
func (s *InstallStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// VersionStep installs a specific Python version through pyenv.
type VersionStep struct {
	version string
	id      step.StepID
	runner  ports.CommandRunner
}

// NewVersionStep creates a new VersionStep.
func NewVersionStep(version string, runner ports.CommandRunner) *VersionStep {
	return &VersionStep{
		version: version,
		id:      step.MustNewStepID("pyenv:python:" + version),
		runner:  runner,
	}
}

// ID returns the step identifier.
func (s *VersionStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *VersionStep) Label() string {
	return fmt.Sprintf("Python %s (pyenv)", s.version)
}

// Criticality returns the failure policy.
func (s *VersionStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check lists installed versions and looks for the desired one.
func (s *VersionStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "pyenv", "versions", "--bare")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, fmt.Errorf("pyenv versions failed: %s", strings.TrimSpace(result.Stderr))
	}

	for _, v := range strings.Split(strings.TrimSpace(result.Stdout), "\n") {
		if strings.TrimSpace(v) == s.version {
			return step.StatusSatisfied, nil
		}
	}
	return step.StatusNeedsApply, nil
}

// Apply installs the Python version. The -s flag keeps the installer
// convergent: it is a no-op when the version already exists.
func (s *VersionStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "pyenv", "install", "-s", s.version)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("pyenv install %s failed: %s", s.version, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installed versions.
func (s *VersionStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// GlobalStep selects the global Python version.
type GlobalStep struct {
	version string
	id      step.StepID
	runner  ports.CommandRunner
}

// NewGlobalStep creates a new GlobalStep.
func NewGlobalStep(version string, runner ports.CommandRunner) *GlobalStep {
	return &GlobalStep{
		version: version,
		id:      step.MustNewStepID("pyenv:global:" + version),
		runner:  runner,
	}
}

// ID returns the step identifier.
func (s *GlobalStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *GlobalStep) Label() string {
	return fmt.Sprintf("pyenv global %s", s.version)
}

// Criticality returns the failure policy.
func (s *GlobalStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check compares the current global version.
func (s *GlobalStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "pyenv", "global")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, fmt.Errorf("pyenv global failed: %s", strings.TrimSpace(result.Stderr))
	}

	if strings.TrimSpace(result.Stdout) == s.version {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply sets the global version.
func (s *GlobalStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "pyenv", "global", s.version)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("pyenv global %s failed: %s", s.version, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the global version.
func (s *GlobalStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
