package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no path is given.
const DefaultPath = "groundcrew.yaml"

// Load reads a manifest file, applies defaults for absent fields, and
// validates the result. A missing file at the default path is not an error:
// the defaults are returned so a bare invocation works.
func Load(path string) (*Manifest, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	return Parse(data)
}

// Parse decodes manifest YAML over the defaults and validates it.
func Parse(data []byte) (*Manifest, error) {
	m := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	return m, nil
}
