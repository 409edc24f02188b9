// Package commandutil provides shared helpers for provider checks.
package commandutil

import (
	"context"
	"errors"
	"os"
	"os/exec"

	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// IsCommandNotFound reports whether an error indicates a missing executable.
func IsCommandNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound) {
		return true
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return true
	}
	return false
}

// ToolStatus runs a version-style probe command and maps the result to a
// step status: a missing binary or non-zero exit means the tool needs
// installing; any other execution error leaves the state unknown.
func ToolStatus(ctx context.Context, runner ports.CommandRunner, name string, args ...string) (step.Status, error) {
	result, err := runner.Run(ctx, name, args...)
	if err != nil {
		if IsCommandNotFound(err) {
			return step.StatusNeedsApply, nil
		}
		return step.StatusUnknown, err
	}
	if !result.Success() {
		return step.StatusNeedsApply, nil
	}
	return step.StatusSatisfied, nil
}
