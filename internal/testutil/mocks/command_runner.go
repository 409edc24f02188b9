// Package mocks provides test doubles for testing.
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// CommandRunner is a thread-safe test double for ports.CommandRunner.
type CommandRunner struct {
	mu            sync.RWMutex
	results       map[string]ports.CommandResult
	errors        map[string]error
	scriptResults map[string]ports.CommandResult
	scriptErrors  map[string]error
	calls         []ports.CommandCall
	scripts       []string
}

// NewCommandRunner creates a new CommandRunner mock.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{
		results:       make(map[string]ports.CommandResult),
		errors:        make(map[string]error),
		scriptResults: make(map[string]ports.CommandResult),
		scriptErrors:  make(map[string]error),
	}
}

// AddResult registers an expected command and its result.
func (m *CommandRunner) AddResult(command string, args []string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[buildKey(command, args)] = result
}

// AddError registers an expected command that should return an error.
func (m *CommandRunner) AddError(command string, args []string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[buildKey(command, args)] = err
}

// AddScriptResult registers an expected shell snippet and its result.
func (m *CommandRunner) AddScriptResult(script string, result ports.CommandResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scriptResults[script] = result
}

// AddScriptError registers an expected shell snippet that should fail.
func (m *CommandRunner) AddScriptError(script string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scriptErrors[script] = err
}

// Run executes a mock command.
func (m *CommandRunner) Run(_ context.Context, command string, args ...string) (ports.CommandResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, ports.CommandCall{
		Command: command,
		Args:    args,
	})
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	key := buildKey(command, args)

	if err, ok := m.errors[key]; ok {
		return ports.CommandResult{}, err
	}
	if result, ok := m.results[key]; ok {
		return result, nil
	}

	return ports.CommandResult{}, fmt.Errorf("no mock result for command: %s %v", command, args)
}

// RunScript executes a mock shell snippet.
func (m *CommandRunner) RunScript(_ context.Context, script string) (ports.CommandResult, error) {
	m.mu.Lock()
	m.scripts = append(m.scripts, script)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.scriptErrors[script]; ok {
		return ports.CommandResult{}, err
	}
	if result, ok := m.scriptResults[script]; ok {
		return result, nil
	}

	return ports.CommandResult{}, fmt.Errorf("no mock result for script: %s", script)
}

// Calls returns all recorded command invocations.
func (m *CommandRunner) Calls() []ports.CommandCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]ports.CommandCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Scripts returns all recorded shell snippets.
func (m *CommandRunner) Scripts() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	scripts := make([]string, len(m.scripts))
	copy(scripts, m.scripts)
	return scripts
}

// buildKey creates a map key from command and args.
func buildKey(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}

// Ensure CommandRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*CommandRunner)(nil)
