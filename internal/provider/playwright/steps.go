// Package playwright provides the browser bundle step for Playwright-based
// end-to-end tests.
package playwright

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

// BrowsersStep downloads the Playwright browser bundle.
// Advisory and network-gated: browsers are only needed for the e2e suite and
// download from the private mirror.
type BrowsersStep struct {
	browsers []string
	cacheDir string
	id       step.StepID
	runner   ports.CommandRunner
	fs       ports.FileSystem
}

// NewBrowsersStep creates a new BrowsersStep.
func NewBrowsersStep(browsers []string, plat *platform.Platform, runner ports.CommandRunner, fs ports.FileSystem) *BrowsersStep {
	cacheDir := "~/.cache/ms-playwright"
	if plat.OS() == platform.OSDarwin {
		cacheDir = "~/Library/Caches/ms-playwright"
	}

	return &BrowsersStep{
		browsers: browsers,
		cacheDir: ports.ExpandPath(cacheDir),
		id:       step.MustNewStepID("playwright:browsers"),
		runner:   runner,
		fs:       fs,
	}
}

// ID returns the step identifier.
func (s *BrowsersStep) ID() step.StepID {
	return s.id
}

// Label returns the human-readable step label.
func (s *BrowsersStep) Label() string {
	return fmt.Sprintf("Playwright browsers (%s)", strings.Join(s.browsers, ", "))
}

// Criticality returns the failure policy.
func (s *BrowsersStep) Criticality() step.Criticality {
	return step.Advisory
}

// NetworkGated marks this step as requiring the private network.
func (s *BrowsersStep) NetworkGated() bool {
	return true
}

// Check looks for the Playwright browser cache.
func (s *BrowsersStep) Check(_ step.RunContext) (step.Status, error) {
	if s.fs.IsDir(s.cacheDir) {
		return step.StatusSatisfied, nil
	}
	return step.StatusNeedsApply, nil
}

// Apply downloads the configured browsers.
func (s *BrowsersStep) Apply(ctx step.RunContext) error {
	args := append([]string{"--yes", "playwright", "install"}, s.browsers...)
	result, err := s.runner.Run(ctx.Context(), "npx", args...)
	if err != nil {
		return err
	}
	if !result.Success() {
		return fmt.Errorf("playwright install failed: %s", strings.TrimSpace(result.Stderr))
	}
	return nil
}

// Verify re-checks the browser cache.
func (s *BrowsersStep) Verify(ctx step.RunContext) (step.Status, error) {
	return s.Check(ctx)
}
