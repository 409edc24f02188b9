package poetry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/groundcrew/internal/provider/poetry"
	"github.com/felixgeelhaar/groundcrew/internal/testutil/mocks"
)

func TestPythonConstraint_PoetryDependencies(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("pyproject.toml", []byte(`
[tool.poetry]
name = "demo"

[tool.poetry.dependencies]
python = "^3.12"
requests = "^2.31"
`))

	constraint, err := poetry.PythonConstraint(fs, "pyproject.toml")

	require.NoError(t, err)
	assert.Equal(t, "^3.12", constraint)
}

func TestPythonConstraint_PEP621RequiresPython(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("pyproject.toml", []byte(`
[project]
name = "demo"
requires-python = ">=3.11"
`))

	constraint, err := poetry.PythonConstraint(fs, "pyproject.toml")

	require.NoError(t, err)
	assert.Equal(t, ">=3.11", constraint)
}

func TestPythonConstraint_PrefersRequiresPython(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("pyproject.toml", []byte(`
[project]
requires-python = ">=3.11"

[tool.poetry.dependencies]
python = "^3.12"
`))

	constraint, err := poetry.PythonConstraint(fs, "pyproject.toml")

	require.NoError(t, err)
	assert.Equal(t, ">=3.11", constraint)
}

func TestPythonConstraint_NoConstraint(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("pyproject.toml", []byte("[tool.poetry]\nname = \"demo\"\n"))

	constraint, err := poetry.PythonConstraint(fs, "pyproject.toml")

	require.NoError(t, err)
	assert.Empty(t, constraint)
}

func TestPythonConstraint_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := poetry.PythonConstraint(mocks.NewFileSystem(), "pyproject.toml")

	require.Error(t, err)
}

func TestPythonConstraint_InvalidTOML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("pyproject.toml", []byte("[tool.poetry\nbroken"))

	_, err := poetry.PythonConstraint(fs, "pyproject.toml")

	require.Error(t, err)
}
