package poetry

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// pyproject models the slices of pyproject.toml we care about: the Python
// constraint in either the Poetry table or the PEP 621 project table.
type pyproject struct {
	Tool struct {
		Poetry struct {
			Dependencies map[string]interface{} `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
	Project struct {
		RequiresPython string `toml:"requires-python"`
	} `toml:"project"`
}

// PythonConstraint reads the Python version constraint from a pyproject.toml.
// Returns "" when the file has no constraint.
func PythonConstraint(fs ports.FileSystem, path string) (string, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	var doc pyproject
	if err := toml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}

	if doc.Project.RequiresPython != "" {
		return doc.Project.RequiresPython, nil
	}

	if raw, ok := doc.Tool.Poetry.Dependencies["python"]; ok {
		if constraint, ok := raw.(string); ok {
			return constraint, nil
		}
	}

	return "", nil
}
