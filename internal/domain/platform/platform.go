// Package platform detects which machine flavor groundcrew is provisioning:
// macOS, Debian, or Debian under WSL.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// OS represents the operating system type.
type OS string

const (
	// OSDarwin is macOS.
	OSDarwin OS = "darwin"
	// OSLinux is Linux (native or WSL).
	OSLinux OS = "linux"
	// OSUnknown is an unsupported OS.
	OSUnknown OS = "unknown"
)

// Environment represents the execution environment.
type Environment string

const (
	// EnvNative is a native OS environment.
	EnvNative Environment = "native"
	// EnvWSL is Windows Subsystem for Linux (either version).
	EnvWSL Environment = "wsl"
)

// PackageManager names the system package manager for a platform.
type PackageManager string

const (
	// PkgBrew is Homebrew (macOS).
	PkgBrew PackageManager = "brew"
	// PkgApt is apt-get (Debian, including WSL).
	PkgApt PackageManager = "apt"
)

// Platform contains detected platform information.
type Platform struct {
	os          OS
	arch        string
	environment Environment
	distro      string
}

var (
	detected     *Platform
	detectOnce   sync.Once
	detectedErr  error
	testPlatform *Platform // For testing
)

// Detect returns the current platform information.
// Results are cached after the first call.
func Detect() (*Platform, error) {
	if testPlatform != nil {
		return testPlatform, nil
	}

	detectOnce.Do(func() {
		detected, detectedErr = detect()
	})
	return detected, detectedErr
}

// SetTestPlatform sets a mock platform for testing.
// Pass nil to reset to actual detection.
func SetTestPlatform(p *Platform) {
	testPlatform = p
}

// NewTestPlatform builds a Platform with explicit values for tests.
func NewTestPlatform(osName OS, env Environment, distro string) *Platform {
	return &Platform{
		os:          osName,
		arch:        runtime.GOARCH,
		environment: env,
		distro:      distro,
	}
}

func detect() (*Platform, error) {
	p := &Platform{
		arch:        runtime.GOARCH,
		environment: EnvNative,
	}

	switch runtime.GOOS {
	case "darwin":
		p.os = OSDarwin
	case "linux":
		p.os = OSLinux
		p.detectLinuxEnvironment()
	default:
		p.os = OSUnknown
		return p, fmt.Errorf("unsupported platform %q: groundcrew supports macOS and Debian (native or WSL)", runtime.GOOS)
	}

	return p, nil
}

// detectLinuxEnvironment checks for WSL and reads the distro name.
func (p *Platform) detectLinuxEnvironment() {
	if isWSL() {
		p.environment = EnvWSL
	}
	p.distro = readDistro()
}

// isWSL checks if running in Windows Subsystem for Linux.
func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// readDistro reads the distribution ID from /etc/os-release, preferring the
// WSL_DISTRO_NAME environment variable when present.
func readDistro() string {
	if distro := os.Getenv("WSL_DISTRO_NAME"); distro != "" {
		return strings.ToLower(distro)
	}

	data, err := os.ReadFile("/etc/os-release")
	if err != nil {
		return ""
	}

	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "ID=") {
			return strings.Trim(strings.TrimPrefix(line, "ID="), "\"")
		}
	}
	return ""
}

// OS returns the operating system type.
func (p *Platform) OS() OS {
	return p.os
}

// Arch returns the CPU architecture.
func (p *Platform) Arch() string {
	return p.arch
}

// Environment returns the execution environment.
func (p *Platform) Environment() Environment {
	return p.environment
}

// Distro returns the Linux distribution ID ("" on macOS).
func (p *Platform) Distro() string {
	return p.distro
}

// IsWSL returns true when running under WSL.
func (p *Platform) IsWSL() bool {
	return p.environment == EnvWSL
}

// PackageManager returns the system package manager for this platform.
func (p *Platform) PackageManager() PackageManager {
	if p.os == OSDarwin {
		return PkgBrew
	}
	return PkgApt
}

// String returns a human-readable platform description.
func (p *Platform) String() string {
	desc := fmt.Sprintf("%s/%s", p.os, p.arch)
	if p.IsWSL() {
		desc += " (wsl"
		if p.distro != "" {
			desc += ":" + p.distro
		}
		desc += ")"
	}
	return desc
}
