// Package brew provides Homebrew steps for macOS machines.
package brew

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// installerScript is the official Homebrew bootstrap one-liner.
const installerScript = `/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`

// BootstrapStep installs Homebrew itself.
type BootstrapStep struct {
	id     step.StepID
	runner ports.CommandRunner
}

// NewBootstrapStep creates a new BootstrapStep.
func NewBootstrapStep(runner ports.CommandRunner) *BootstrapStep {
	return &BootstrapStep{
		id:     step.MustNewStepID("brew:bootstrap"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *BootstrapStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *BootstrapStep) Label() string {
	return "Homebrew package manager"
}

// Criticality returns the failure policy. Without a package manager nothing
// else can install, so this blocks.
func (s *BootstrapStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check determines if Homebrew is already installed.
func (s *BootstrapStep) Check(ctx step.RunContext) (step.Status, error) {
	return commandutil.ToolStatus(ctx.Context(), s.runner, "brew", "--version")
}

// Apply runs the official installer.
func (s *BootstrapStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.RunScript(ctx.Context(), installerScript)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("homebrew installer failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installation.
func (s *BootstrapStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// FormulaStep installs a single Homebrew formula.
type FormulaStep struct {
	formula     string
	criticality step.Criticality
	id          step.StepID
	runner      ports.CommandRunner
}

// NewFormulaStep creates a new FormulaStep.
func NewFormulaStep(formula string, criticality step.Criticality, runner ports.CommandRunner) *FormulaStep {
	return &FormulaStep{
		formula:     formula,
		criticality: criticality,
		id:          step.MustNewStepID("brew:install:" + formula),
		runner:      runner,
	}
}

// ID returns the step identifier.
func (s *FormulaStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *FormulaStep) Label() string {
	return fmt.Sprintf("Homebrew formula %s", s.formula)
}

// Criticality returns the failure policy.
func (s *FormulaStep) Criticality() step.Criticality {
	return s.criticality
}

// Check determines if the formula is already installed.
func (s *FormulaStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "brew", "list", "--formula")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, fmt.Errorf("brew list failed: %s", strings.TrimSpace(result.Stderr))
	}

	for _, f := range strings.Split(strings.TrimSpace(result.Stdout), "\n") {
		if f == s.formula {
			return step.StatusSatisfied, nil
		}
	}
	return step.StatusNeedsApply, nil
}

// Apply installs the formula.
func (s *FormulaStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "brew", "install", s.formula)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("brew install %s failed: %s", s.formula, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installation.
func (s *FormulaStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
