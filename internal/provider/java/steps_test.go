package java_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/java"
	"github.com/felixgeelhaar/groundcrew/internal/testutil/mocks"
)

func runCtx() step.RunContext {
	return step.NewRunContext(context.TODO())
}

func checkWithBanner(t *testing.T, minVersion, banner string) step.Status {
	t.Helper()

	runner := mocks.NewCommandRunner()
	runner.AddResult("java", []string{"-version"}, ports.CommandResult{
		ExitCode: 0,
		Stderr:   banner,
	})

	s := java.NewRuntimeStep(minVersion, "openjdk-17-jdk", platform.PkgApt, runner)
	status, err := s.Check(runCtx())
	require.NoError(t, err)
	return status
}

func TestRuntimeStep_Check_BannerVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		min    string
		banner string
		want   step.Status
	}{
		{
			name:   "modern openjdk meets floor",
			min:    "17",
			banner: `openjdk version "17.0.9" 2023-10-17`,
			want:   step.StatusSatisfied,
		},
		{
			name:   "newer major meets floor",
			min:    "17",
			banner: `openjdk version "21.0.2" 2024-01-16`,
			want:   step.StatusSatisfied,
		},
		{
			name:   "older major below floor",
			min:    "17",
			banner: `openjdk version "11.0.22" 2024-01-16`,
			want:   step.StatusNeedsApply,
		},
		{
			name:   "bare major version in banner",
			min:    "17",
			banner: `openjdk version "17" 2021-09-14`,
			want:   step.StatusSatisfied,
		},
		{
			name:   "legacy 1.8 banner below floor",
			min:    "17",
			banner: `java version "1.8.0_392"`,
			want:   step.StatusNeedsApply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, checkWithBanner(t, tt.min, tt.banner))
		})
	}
}

func TestRuntimeStep_Check_NoFloor(t *testing.T) {
	t.Parallel()

	status := checkWithBanner(t, "", `openjdk version "11.0.22"`)
	assert.Equal(t, step.StatusSatisfied, status)
}

func TestRuntimeStep_Check_UnparseableBanner(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("java", []string{"-version"}, ports.CommandResult{
		ExitCode: 0,
		Stderr:   "no version here",
	})

	s := java.NewRuntimeStep("17", "openjdk-17-jdk", platform.PkgApt, runner)
	status, err := s.Check(runCtx())

	require.Error(t, err)
	assert.Equal(t, step.StatusUnknown, status)
}

func TestRuntimeStep_Apply_Apt(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "openjdk-17-jdk"}, ports.CommandResult{ExitCode: 0})

	s := java.NewRuntimeStep("17", "openjdk-17-jdk", platform.PkgApt, runner)

	require.NoError(t, s.Apply(runCtx()))
}

func TestRuntimeStep_Apply_Brew(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"install", "openjdk@17"}, ports.CommandResult{ExitCode: 0})

	s := java.NewRuntimeStep("17", "openjdk@17", platform.PkgBrew, runner)

	require.NoError(t, s.Apply(runCtx()))
}
