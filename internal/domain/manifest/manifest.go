// Package manifest defines the groundcrew.yaml configuration: which tools to
// provision, desired versions, probe endpoint, and project-local file paths.
// Every field has a default so a bare invocation works without a file.
package manifest

import (
	"fmt"
	"time"
)

// Manifest is the root configuration document.
type Manifest struct {
	Probe      ProbeConfig      `yaml:"probe"`
	Apt        AptConfig        `yaml:"apt"`
	Brew       BrewConfig       `yaml:"brew"`
	Python     PythonConfig     `yaml:"python"`
	Poetry     PoetryConfig     `yaml:"poetry"`
	Gcloud     GcloudConfig     `yaml:"gcloud"`
	Playwright PlaywrightConfig `yaml:"playwright"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Allure     AllureConfig     `yaml:"allure"`
	Java       JavaConfig       `yaml:"java"`
	Env        EnvConfig        `yaml:"env"`
	Shell      ShellConfig      `yaml:"shell"`
	Prompt     PromptConfig     `yaml:"prompt"`
}

// ProbeConfig configures the private-network reachability probe.
type ProbeConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration parses the configured timeout.
func (c ProbeConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 10 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("probe timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("probe timeout must be positive, got %s", c.Timeout)
	}
	return d, nil
}

// AptConfig lists the build dependency packages installed on Debian before
// anything compiles Python from source.
type AptConfig struct {
	Packages []string `yaml:"packages"`
}

// BrewConfig lists the formulae installed on macOS before anything compiles
// Python from source.
type BrewConfig struct {
	Formulas []string `yaml:"formulas"`
}

// PythonConfig configures pyenv and the Python toolchain.
type PythonConfig struct {
	Disabled bool   `yaml:"disabled"`
	Version  string `yaml:"version"`
}

// PoetryConfig configures the Poetry dependency manager.
type PoetryConfig struct {
	Disabled   bool   `yaml:"disabled"`
	MinVersion string `yaml:"min_version"`
	Pyproject  string `yaml:"pyproject"`
}

// GcloudConfig configures the Google Cloud SDK.
type GcloudConfig struct {
	Disabled   bool     `yaml:"disabled"`
	Components []string `yaml:"components"`
}

// PlaywrightConfig configures the Playwright browser bundle.
type PlaywrightConfig struct {
	Disabled bool     `yaml:"disabled"`
	Browsers []string `yaml:"browsers"`
}

// PostgresConfig configures the PostgreSQL client tools.
type PostgresConfig struct {
	Disabled bool   `yaml:"disabled"`
	Package  string `yaml:"package"`
}

// AllureConfig configures the Allure report CLI.
type AllureConfig struct {
	Disabled bool `yaml:"disabled"`
}

// JavaConfig configures the JVM requirement.
type JavaConfig struct {
	Disabled   bool   `yaml:"disabled"`
	MinVersion string `yaml:"min_version"`
	Package    string `yaml:"package"`
}

// EnvConfig configures the project-local files groundcrew creates.
type EnvConfig struct {
	File         string `yaml:"file"`
	DefaultKey   string `yaml:"default_key"`
	DefaultValue string `yaml:"default_value"`
	Alternative  string `yaml:"alternative"`
	SettingsFile string `yaml:"settings_file"`
}

// ShellConfig configures shell profile management.
type ShellConfig struct {
	Profile string   `yaml:"profile"`
	Lines   []string `yaml:"lines"`
}

// PromptConfig selects interactive or policy-driven failure handling.
// An empty policy means interactive.
type PromptConfig struct {
	Policy     string `yaml:"policy"`
	MaxRetries int    `yaml:"max_retries"`
}

// Default returns the manifest used when no file is present.
func Default() *Manifest {
	return &Manifest{
		Probe: ProbeConfig{
			URL:     "",
			Timeout: "10s",
		},
		Apt: AptConfig{
			Packages: []string{
				"build-essential",
				"libssl-dev",
				"zlib1g-dev",
				"libreadline-dev",
				"libsqlite3-dev",
			},
		},
		Brew: BrewConfig{
			Formulas: []string{
				"openssl@3",
				"readline",
				"sqlite",
				"xz",
				"zlib",
			},
		},
		Python: PythonConfig{
			Version: "3.12.4",
		},
		Poetry: PoetryConfig{
			MinVersion: "1.8.0",
			Pyproject:  "pyproject.toml",
		},
		Gcloud: GcloudConfig{
			Components: []string{"gke-gcloud-auth-plugin"},
		},
		Playwright: PlaywrightConfig{
			Browsers: []string{"chromium"},
		},
		Postgres: PostgresConfig{
			Package: "postgresql",
		},
		Java: JavaConfig{
			MinVersion: "17",
			Package:    "openjdk-17-jdk",
		},
		Env: EnvConfig{
			File:         ".env",
			DefaultKey:   "APP_ENV",
			DefaultValue: "local",
			Alternative:  "APP_ENV=staging",
			SettingsFile: "local_settings.py",
		},
		Shell: ShellConfig{
			Profile: "~/.bashrc",
			Lines: []string{
				`export PYENV_ROOT="$HOME/.pyenv"`,
				`export PATH="$PYENV_ROOT/bin:$PATH"`,
				`eval "$(pyenv init -)"`,
			},
		},
		Prompt: PromptConfig{
			MaxRetries: 2,
		},
	}
}

// Validate checks cross-field constraints.
func (m *Manifest) Validate() error {
	if _, err := m.Probe.TimeoutDuration(); err != nil {
		return err
	}

	if !m.Python.Disabled && m.Python.Version == "" {
		return fmt.Errorf("python.version is required when python is enabled")
	}

	if m.Env.File == "" {
		return fmt.Errorf("env.file must not be empty")
	}
	if m.Env.DefaultKey == "" {
		return fmt.Errorf("env.default_key must not be empty")
	}

	if m.Prompt.Policy != "" {
		switch m.Prompt.Policy {
		case "continue", "abort", "retry":
		default:
			return fmt.Errorf("prompt.policy must be one of continue, abort, retry (got %q)", m.Prompt.Policy)
		}
	}
	if m.Prompt.MaxRetries < 0 {
		return fmt.Errorf("prompt.max_retries must not be negative")
	}

	return nil
}
