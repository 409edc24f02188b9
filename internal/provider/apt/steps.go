// Package apt provides apt-get steps for Debian machines, native or WSL.
package apt

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// PackageStep installs a single apt package.
type PackageStep struct {
	pkg         string
	criticality step.Criticality
	id          step.StepID
	runner      ports.CommandRunner
}

// NewPackageStep creates a new PackageStep.
func NewPackageStep(pkg string, criticality step.Criticality, runner ports.CommandRunner) *PackageStep {
	return &PackageStep{
		pkg:         pkg,
		criticality: criticality,
		id:          step.MustNewStepID("apt:install:" + pkg),
		runner:      runner,
	}
}

// ID returns the step identifier.
func (s *PackageStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *PackageStep) Label() string {
	return fmt.Sprintf("apt package %s", s.pkg)
}

// Criticality returns the failure policy.
func (s *PackageStep) Criticality() step.Criticality {
	return s.criticality
}

// Check uses dpkg to determine if the package is installed.
func (s *PackageStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "dpkg", "-s", s.pkg)
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusUnknown, fmt.Errorf("dpkg not available: %w", err)
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusNeedsApply, nil
	}
	if strings.Contains(result.Stdout, "Status: install ok installed") {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply installs the package non-interactively.
func (s *PackageStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "sudo", "apt-get", "install", "-y", s.pkg)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("apt-get install %s failed: %s", s.pkg, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installation.
func (s *PackageStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// listsDir is where apt keeps its downloaded package index.
const listsDir = "/var/lib/apt/lists"

// indexMaxAge is how long a downloaded index counts as fresh.
const indexMaxAge = 24 * time.Hour

// UpdateStep refreshes the apt package index when it is stale.
// Advisory: a stale index degrades later installs but should not block the
// run on its own.
type UpdateStep struct {
	id     step.StepID
	runner ports.CommandRunner
	fs     ports.FileSystem
	now    func() time.Time
}

// NewUpdateStep creates a new UpdateStep.
func NewUpdateStep(runner ports.CommandRunner, fs ports.FileSystem) *UpdateStep {
	return &UpdateStep{
		id:     step.MustNewStepID("apt:update"),
		runner: runner,
		fs:     fs,
		now:    time.Now,
	}
}

// ID returns the step identifier.
func (s *UpdateStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *UpdateStep) Label() string {
	return "apt package index"
}

// Criticality returns the failure policy.
func (s *UpdateStep) Criticality() step.Criticality {
	return step.Advisory
}

// Check treats an index younger than a day as fresh.
func (s *UpdateStep) Check(_ step.RunContext) (step.Status, error) {
	info, err := s.fs.GetFileInfo(listsDir)
	if err != nil {
		return step.StatusNeedsApply, nil
	}
	if s.now().Sub(info.ModTime) < indexMaxAge {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply refreshes the index.
func (s *UpdateStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "sudo", "apt-get", "update")
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("apt-get update failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks index freshness.
func (s *UpdateStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
