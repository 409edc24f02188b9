package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/postgres"
	"github.com/felixgeelhaar/groundcrew/internal/testutil/mocks"
)

func runCtx() step.RunContext {
	return step.NewRunContext(context.TODO())
}

func TestClientStep_Check_Installed(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("psql", []string{"--version"}, ports.CommandResult{
		ExitCode: 0,
		Stdout:   "psql (PostgreSQL) 16.2",
	})

	s := postgres.NewClientStep("postgresql", platform.PkgApt, runner)
	status, err := s.Check(runCtx())

	require.NoError(t, err)
	assert.Equal(t, step.StatusSatisfied, status)
	assert.Equal(t, step.Blocking, s.Criticality())
}

func TestClientStep_Apply_Brew(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("brew", []string{"install", "postgresql@16"}, ports.CommandResult{ExitCode: 0})

	s := postgres.NewClientStep("postgresql@16", platform.PkgBrew, runner)

	require.NoError(t, s.Apply(runCtx()))
}

func TestClientStep_Apply_Apt(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "postgresql"}, ports.CommandResult{ExitCode: 0})

	s := postgres.NewClientStep("postgresql", platform.PkgApt, runner)

	require.NoError(t, s.Apply(runCtx()))
}

func TestClientStep_Apply_Failure(t *testing.T) {
	t.Parallel()

	runner := mocks.NewCommandRunner()
	runner.AddResult("sudo", []string{"apt-get", "install", "-y", "postgresql"}, ports.CommandResult{
		ExitCode: 100,
		Stderr:   "E: Unable to locate package postgresql",
	})

	s := postgres.NewClientStep("postgresql", platform.PkgApt, runner)
	err := s.Apply(runCtx())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to locate package")
}
