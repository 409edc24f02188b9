// Package java provides the JVM requirement step.
package java

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/commandutil"
)

// versionPattern extracts the version from `java -version` output, e.g.
// `openjdk version "17.0.9" 2023-10-17`.
var versionPattern = regexp.MustCompile(`version "(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// RuntimeStep ensures a JVM at or above the configured major version.
type RuntimeStep struct {
	minVersion string
	pkg        string
	pm         platform.PackageManager
	id         step.StepID
	runner     ports.CommandRunner
}

// NewRuntimeStep creates a new RuntimeStep. pkg is the platform package name
// used when installing (e.g. "openjdk-17-jdk" or "openjdk@17").
func NewRuntimeStep(minVersion, pkg string, pm platform.PackageManager, runner ports.CommandRunner) *RuntimeStep {
	return &RuntimeStep{
		minVersion: minVersion,
		pkg:        pkg,
		pm:         pm,
		id:         step.MustNewStepID("java:runtime"),
		runner:     runner,
	}
}

// ID returns the step identifier.
func (s *RuntimeStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *RuntimeStep) Label() string {
	if s.minVersion != "" {
		return fmt.Sprintf("Java runtime >= %s", s.minVersion)
	}
	return "Java runtime"
}

// Criticality returns the failure policy.
func (s *RuntimeStep) Criticality() step.Criticality {
	return step.Blocking
}

// Check probes `java -version` and compares against the floor.
// The JVM prints its version banner to stderr.
func (s *RuntimeStep) Check(ctx step.RunContext) (step.Status, error) {
	result, err := s.runner.Run(ctx.Context(), "java", "-version")
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

	installed := parseVersion(result.Stderr + result.Stdout)
	if installed == "" {
		return step.StatusUnknown, fmt.Errorf("cannot parse java version output")
	}

	if semver.Compare("v"+installed, "v"+normalize(s.minVersion)) < 0 {
		return step.StatusNeedsApply, nil
	}
	return step.StatusSatisfied, nil
}

// Apply installs the configured JDK package.
func (s *RuntimeStep) Apply(ctx step.RunContext) error {
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

// Verify re-checks the runtime version.
func (s *RuntimeStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}

// parseVersion extracts a semver-comparable version from the banner.
func parseVersion(banner string) string {
	m := versionPattern.FindStringSubmatch(banner)
	if m == nil {
		return ""
	}
	version := m[1]
	if m[2] != "" {
		version += "." + m[2]
	} else {
		version += ".0"
	}
	if m[3] != "" {
		version += "." + m[3]
	} else {
		version += ".0"
	}
	return version
}

// normalize pads a bare major version ("17") for semver comparison.
func normalize(v string) string {
	switch strings.Count(v, ".") {
	case 0:
		return v + ".0.0"
	case 1:
		return v + ".0"
	default:
		return v
	}
}
