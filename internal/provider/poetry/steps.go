// Package poetry provides steps for the Poetry dependency manager.
package poetry

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// installerScript is the official Poetry installer one-liner.
const installerScript = `curl -sSL https://install.python-poetry.org | python3 -`

// versionPattern extracts the version from "Poetry (version 1.8.2)".
var versionPattern = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

// InstallStep installs Poetry, upgrading when the installed version is older
// than the configured floor.
type InstallStep struct {
	minVersion string
	id         step.StepID
	runner     ports.CommandRunner
}

// NewInstallStep creates a new InstallStep. minVersion may be empty to accept
// any installed version.
func NewInstallStep(minVersion string, runner ports.CommandRunner) *InstallStep {
	return &InstallStep{
		minVersion: minVersion,
		id:         step.MustNewStepID("poetry:install"),
		runner:     runner,
	}
}

// ID returns the step identifier.
func (s *InstallStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *InstallStep) Label() string {
	if s.minVersion != "" {
		return fmt.Sprintf("Poetry >= %s", s.minVersion)
	}
	return "Poetry dependency manager"
}

// Criticality returns the failure policy.
func (s *InstallStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check probes the installed version and compares it against the floor.
func (s *InstallStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "poetry", "--version")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusNeedsApply, nil
	}

	if s.minVersion == "" {
		return step.StatusSatisfied, nil
	}

	installed := versionPattern.FindString(result.Stdout)
	if installed == "" {
		return step.StatusUnknown, fmt.Errorf("cannot parse poetry version from %q", strings.TrimSpace(result.Stdout))
	}

	if semver.Compare("v"+installed, "v"+s.minVersion) < 0 {
		return step.StatusNeedsApply, nil
	}
	return step.StatusSatisfied, nil
}

// Apply runs the official installer.
func (s *InstallStep) Apply(ctx step.RunContext) error {
	result, err := s.runner.RunScript(ctx.Context(), installerScript)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("poetry installer failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks version and floor.
func (s *InstallStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// EnvStep creates the in-project virtualenv for a Poetry project, selecting
// the interpreter from the pyproject.toml Python constraint.
type EnvStep struct {
	pyprojectPath string
	id            step.StepID
	runner        ports.CommandRunner
	fs            ports.FileSystem
}

// NewEnvStep creates a new EnvStep.
func NewEnvStep(pyprojectPath string, runner ports.CommandRunner, fs ports.FileSystem) *EnvStep {
	return &EnvStep{
		pyprojectPath: pyprojectPath,
		id:            step.MustNewStepID("poetry:env"),
		runner:        runner,
		fs:            fs,
	}
}

// ID returns the step identifier.
func (s *EnvStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *EnvStep) Label() string {
	return "Poetry project virtualenv"
}

// Criticality returns the failure policy. A missing virtualenv is easy to
// create later by hand, so this does not block the run.
func (s *EnvStep) Criticality() step.Criticality {
	return step.Advisory
}

// Check is satisfied when no Poetry project is present, or when the project
// already has a virtualenv.
func (s *EnvStep) Check(ctx step.RunContext) (step.Status, error) {
	if !s.fs.Exists(s.pyprojectPath) {
		return step.StatusSatisfied, nil
	}

	result, err := s.runner.Run(ctx.Context(), "poetry", "env", "info", "--path")
	if err != nil {
		if commandutil.IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if result.Success() && strings.TrimSpace(result.Stdout) != "" {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply selects the interpreter matching the pyproject constraint.
func (s *EnvStep) Apply(ctx step.RunContext) error {
	interpreter := "python3"
	if constraint, err := PythonConstraint(s.fs, s.pyprojectPath); err == nil && constraint != "" {
		if v := versionPattern.FindString(constraint); v != "" {
			interpreter = v
		}
	}

	result, err := s.runner.Run(ctx.Context(), "poetry", "env", "use", interpreter)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("poetry env use %s failed: %s", interpreter, strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the virtualenv.
func (s *EnvStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
