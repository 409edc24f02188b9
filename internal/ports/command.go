// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// CommandResult represents the result of executing an external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// CommandRunner executes external commands. Installers, version managers and
// package managers are invoked through this interface as opaque subprocesses.
type CommandRunner interface {
	// Run executes a single command with arguments.
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)

	// RunScript executes a shell snippet via "sh -c". Used for installer
	// one-liners that rely on pipes or shell expansion.
	RunScript(ctx context.Context, script string) (CommandResult, error)
}
