// Package postgres provides the PostgreSQL client tools step.
package postgres

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// ClientStep installs the PostgreSQL client tools (psql and friends).
type ClientStep struct {
	pkg    string
	pm     platform.PackageManager
	id     step.StepID
	runner ports.CommandRunner
}

// NewClientStep creates a new ClientStep. pkg is the platform package name
// (e.g. "postgresql" or "postgresql@16").
func NewClientStep(pkg string, pm platform.PackageManager, runner ports.CommandRunner) *ClientStep {
	return &ClientStep{
		pkg:    pkg,
		pm:     pm,
		id:     step.MustNewStepID("postgres:client"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *ClientStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *ClientStep) Label() string {
	return "PostgreSQL client tools"
}

// Criticality returns the failure policy.
func (s *ClientStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check probes for psql.
func (s *ClientStep) Check(ctx step.RunContext) (step.Status, error) {
	return commandutil.ToolStatus(ctx.Context(), s.runner, "psql", "--version")
}

// Apply installs the package through the platform package manager.
func (s *ClientStep) Apply(ctx step.RunContext) error {
	var result ports.CommandResult
	var err error

	if s.pm == platform.PkgBrew {
		result, err = s.runner.Run(ctx.Context(), "brew", "install", s.pkg)
	} else {
		result, err = s.runner.Run(ctx.Context(), "sudo", "apt-get", "install", "-y", s.pkg)
	}
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("install %s failed: %s", s.pkg, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks for psql.
func (s *ClientStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
