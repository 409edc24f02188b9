// Package gcloud provides steps for the Google Cloud SDK.
// All steps are network-gated: component downloads go through the private
// mirror, so the runner probes the VPN endpoint first.
package gcloud

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// InstallStep installs the gcloud CLI through the platform package manager.
type InstallStep struct {
	pm     platform.PackageManager
	id     step.StepID
	runner ports.CommandRunner
}

// NewInstallStep creates a new InstallStep.
func NewInstallStep(pm platform.PackageManager, runner ports.CommandRunner) *InstallStep {
	return &InstallStep{
		pm:     pm,
		id:     step.MustNewStepID("gcloud:install"),
		runner: runner,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *InstallStep) Label() string {
	return "Google Cloud SDK"
}

// Criticality returns the failure policy.
func (s *InstallStep) Criticality() step.Criticality {
	return step.Blocking
}

// NetworkGated marks this step as requiring the private network.
func (s *InstallStep) NetworkGated() bool {
	return true
}

// Check determines if gcloud is already installed.
func (s *InstallStep) Check(ctx step.RunContext) (step.Status, error) {
	return commandutil.ToolStatus(ctx.Context(), s.runner, "gcloud", "--version")
}

// Apply installs the SDK.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	var result ports.CommandResult
	var err error

	if s.pm == platform.PkgBrew {
		result, err = s.runner.Run(ctx.Context(), "brew", "install", "--cask", "google-cloud-sdk")
	} else {
		result, err = s.runner.Run(ctx.Context(), "sudo", "apt-get", "install", "-y", "google-cloud-cli")
	}
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("gcloud install failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the installation.
func (s *InstallStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// ComponentStep installs a single gcloud component.
type ComponentStep struct {
	component string
	id        step.StepID
	runner    ports.CommandRunner
}

// NewComponentStep creates a new ComponentStep.
func NewComponentStep(component string, runner ports.CommandRunner) *ComponentStep {
	return &ComponentStep{
		component: component,
		id:        step.MustNewStepID("gcloud:component:" + component),
		runner:    runner,
	}
}

// ID returns the step identifier.
func (s *ComponentStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *ComponentStep) Label() string {
	return fmt.Sprintf("gcloud component %s", s.component)
}

// Criticality returns the failure policy.
func (s *ComponentStep) Criticality() step.Criticality {
	return step.Blocking
}

// NetworkGated marks this step as requiring the private network.
func (s *ComponentStep) NetworkGated() bool {
	return true
}

// Check asks gcloud for the component's installation state.
func (s *ComponentStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "gcloud", "components", "list",
		"--filter=id:"+s.component, "--format=value(state.name)")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusUnknown, fmt.Errorf("gcloud components list failed: %s", strings.TrimSpace(result.Stderr))
	}

	// state.name is "Installed", "Not Installed", or "Update Available".
	// An installed-but-outdated component still counts as present.
	switch strings.TrimSpace(result.Stdout) {
	case "Installed", "Update Available":
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply installs the component.
func (s *ComponentStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.Run(ctx.Context(), "gcloud", "components", "install", s.component, "--quiet")
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("gcloud components install %s failed: %s", s.component, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the component state.
func (s *ComponentStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
