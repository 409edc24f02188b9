package brew_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/brew"
	"github.com/felixgeelhaar/groundcrew/internal/testutil/mocks"
)

func runCtx() step.RunContext {
	return step.NewRunContext(context.TODO())
}

func TestBootstrapStep_ID(t *testing.T) {
	t.Parallel()

	s := brew.NewBootstrapStep(mocks.NewCommandRunner())

	assert.Equal(t, "brew:bootstrap", s.ID().String())
	assert.Equal(t, step.Blocking, s.Criticality())
}

func TestBootstrapStep_Check_Installed(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"--version"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "Homebrew 4.3.1",
	})

	s := brew.NewBootstrapStep(runner)
	status, err := s.Check(runCtx())

	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)
}

func TestBootstrapStep_Apply_RunsInstaller(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddScriptResult(
		`/bin/bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`,
		ports.CommandResult{ExitCode: 0},
	)

	s := brew.NewBootstrapStep(runner)

	require.NoError(t, s.Apply(runCtx()))
	assert.Len(t, runner.Scripts(), 1)
}

func TestFormulaStep_ID_VersionedFormula(t *testing.T) {
	t.Parallel()

	s := brew.NewFormulaStep("openssl@3", step.Advisory, mocks.NewCommandRunner())

	assert.Equal(t, "brew:install:openssl@3", s.ID().String())
	assert.Equal(t, step.Advisory, s.Criticality())
}

func TestFormulaStep_Check_Installed(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"list", "--formula"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "openssl@3\nreadline\nxz\n",
	})

	s := brew.NewFormulaStep("readline", step.Advisory, runner)
	status, err := s.Check(runCtx())

	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)
}

func TestFormulaStep_Check_NotInstalled(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"list", "--formula"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "openssl@3\n",
	})

	s := brew.NewFormulaStep("readline", step.Advisory, runner)
	status, err := s.Check(runCtx())

	require.NoError(t, err)
	assert.Equal(t, step.StatusNeedsApply, status)
}

func TestFormulaStep_Apply(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"install", "readline"}, ports.CommandResult{ExitCode: 0})

	s := brew.NewFormulaStep("readline", step.Advisory, runner)

	require.NoError(t, s.Apply(runCtx()))
}

func TestFormulaStep_Apply_Failure(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"install", "readline"}, ports.CommandResult{
		ExitCode: 1,
		Stderr:   "Error: No available formula",
	})

	s := brew.NewFormulaStep("readline", step.Advisory, runner)
	err := s.Apply(runCtx())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "No available formula")
}
