// Package allure provides the Allure report CLI step.
package allure

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// CLIStep installs the Allure report generator.
// Advisory: test reports are nice to have, their absence never blocks setup.
type CLIStep struct {
	pm     platform.PackageManager
	id     step.StepID
	runner ports.CommandRunner
}

// NewCLIStep creates a new CLIStep.
func NewCLIStep(pm platform.PackageManager, runner ports.CommandRunner) *CLIStep {
	return &CLIStep{
		pm:     pm,
		id:     step.MustNewStepID("allure:install"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *CLIStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *CLIStep) Label() string {
	return "Allure report CLI"
}

// Criticality returns the failure policy.
func (s *CLIStep) Criticality() step.Criticality {
	return step.Advisory
}

// Check probes for the allure binary.
func (s *CLIStep) Check(ctx step.RunContext) (step.Status, error) {
	return commandutil.ToolStatus(ctx.Context(), s.runner, "allure", "--version")
}

// Apply installs the CLI. On macOS there is a formula; on Debian the
// commandline bundle ships through npm.
func (s *CLIStep) Apply(ctx step.RunContext) error {
	var result ports.CommandResult
	var err error

	if s.pm == platform.PkgBrew {
		result, err = s.runner.Run(ctx.Context(), "brew", "install", "allure")
	} else {
		result, err = s.runner.Run(ctx.Context(), "sudo", "npm", "install", "-g", "allure-commandline")
	}
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("allure install failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks for the binary.
func (s *CLIStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
