// Package app provides the main application logic for groundcrew.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/groundcrew/internal/adapters/command"
	"github.com/felixgeelhaar/groundcrew/internal/adapters/filesystem"
	"github.com/felixgeelhaar/groundcrew/internal/adapters/logging"
	"github.com/felixgeelhaar/groundcrew/internal/adapters/prompt"
	"github.com/felixgeelhaar/groundcrew/internal/domain/manifest"
	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/probe"
	"github.com/felixgeelhaar/groundcrew/internal/domain/runner"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
	"github.com/felixgeelhaar/groundcrew/internal/provider/allure"
	"github.com/felixgeelhaar/groundcrew/internal/provider/apt"
	"github.com/felixgeelhaar/groundcrew/internal/provider/brew"
	"github.com/felixgeelhaar/groundcrew/internal/provider/envfile"
	"github.com/felixgeelhaar/groundcrew/internal/provider/gcloud"
	"github.com/felixgeelhaar/groundcrew/internal/provider/java"
	"github.com/felixgeelhaar/groundcrew/internal/provider/playwright"
	"github.com/felixgeelhaar/groundcrew/internal/provider/poetry"
	"github.com/felixgeelhaar/groundcrew/internal/provider/postgres"
	"github.com/felixgeelhaar/groundcrew/internal/provider/pyenv"
	"github.com/felixgeelhaar/groundcrew/internal/provider/shellenv"
)

// Groundcrew is the main application orchestrator.
type Groundcrew struct {
	cmdRunner ports.CommandRunner
	fs        ports.FileSystem
	logger    ports.Logger
	prompter  ports.Prompter
	out       io.Writer
	styles    styles
}

// Option customizes a Groundcrew instance.
type Option func(*Groundcrew)

// WithLogger replaces the default console logger.
func WithLogger(logger ports.Logger) Option {
	return func(g *Groundcrew) {
		g.logger = logger
	}
}

// WithPrompter forces a prompter, overriding the manifest policy.
func WithPrompter(prompter ports.Prompter) Option {
	return func(g *Groundcrew) {
		g.prompter = prompter
	}
}

// WithCommandRunner replaces the real command runner.
func WithCommandRunner(runner ports.CommandRunner) Option {
	return func(g *Groundcrew) {
		g.cmdRunner = runner
	}
}

// WithFileSystem replaces the real file system.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(g *Groundcrew) {
		g.fs = fs
	}
}

// New creates a new Groundcrew application writing human output to out.
func New(out io.Writer, opts ...Option) *Groundcrew {
	g := &Groundcrew{
		cmdRunner: command.NewRealRunner(),
		fs:        filesystem.NewRealFileSystem(),
		logger:    logging.NewConsoleLogger(logging.WithOutput(out)),
		out:       out,
		styles:    defaultStyles(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BuildSequence assembles the ordered step sequence for the manifest on the
// given platform. Package manager bootstrap comes first, then the Python
// toolchain, then the remaining tools, then project-local files.
func (g *Groundcrew) BuildSequence(m *manifest.Manifest, plat *platform.Platform) (*runner.Sequence, error) {
	var steps []step.Step
	pm := plat.PackageManager()

	switch pm {
	case platform.PkgBrew:
		steps = append(steps, brew.NewBootstrapStep(g.cmdRunner))
		for _, formula := range m.Brew.Formulas {
			steps = append(steps, brew.NewFormulaStep(formula, step.Advisory, g.cmdRunner))
		}
	case platform.PkgApt:
		steps = append(steps, apt.NewUpdateStep(g.cmdRunner, g.fs))
		for _, pkg := range m.Apt.Packages {
			steps = append(steps, apt.NewPackageStep(pkg, step.Blocking, g.cmdRunner))
		}
	}

	if !m.Python.Disabled {
		steps = append(steps,
			pyenv.NewInstallStep(g.cmdRunner),
			pyenv.NewVersionStep(m.Python.Version, g.cmdRunner),
			pyenv.NewGlobalStep(m.Python.Version, g.cmdRunner),
		)
	}

	if m.Shell.Profile != "" && len(m.Shell.Lines) > 0 {
		steps = append(steps, shellenv.NewProfileStep(m.Shell.Profile, m.Shell.Lines, g.fs))
	}

	if !m.Poetry.Disabled {
		steps = append(steps, poetry.NewInstallStep(m.Poetry.MinVersion, g.cmdRunner))
		if m.Poetry.Pyproject != "" {
			steps = append(steps, poetry.NewEnvStep(m.Poetry.Pyproject, g.cmdRunner, g.fs))
		}
	}

	if !m.Gcloud.Disabled {
		steps = append(steps, gcloud.NewInstallStep(pm, g.cmdRunner))
		for _, component := range m.Gcloud.Components {
			steps = append(steps, gcloud.NewComponentStep(component, g.cmdRunner))
		}
	}

	if !m.Postgres.Disabled {
		steps = append(steps, postgres.NewClientStep(m.Postgres.Package, pm, g.cmdRunner))
	}

	if !m.Java.Disabled {
		steps = append(steps, java.NewRuntimeStep(m.Java.MinVersion, m.Java.Package, pm, g.cmdRunner))
	}

	if !m.Playwright.Disabled {
		steps = append(steps, playwright.NewBrowsersStep(m.Playwright.Browsers, plat, g.cmdRunner, g.fs))
	}

	if !m.Allure.Disabled {
		steps = append(steps, allure.NewCLIStep(pm, g.cmdRunner))
	}

	steps = append(steps, envfile.NewEnvFileStep(
		m.Env.File,
		m.Env.DefaultKey,
		m.Env.DefaultValue,
		m.Env.Alternative,
		g.fs,
	))
	if m.Env.SettingsFile != "" {
		steps = append(steps, envfile.NewSettingsFileStep(m.Env.SettingsFile, g.fs))
	}

	return runner.NewSequence(steps...)
}

// Run builds the sequence and executes it.
func (g *Groundcrew) Run(ctx context.Context, m *manifest.Manifest, plat *platform.Platform) (*runner.Report, error) {
	seq, err := g.BuildSequence(m, plat)
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence: %w", err)
	}

	r := runner.New(g.logger, g.selectPrompter(m))

	if m.Probe.URL != "" {
		timeout, err := m.Probe.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		r = r.WithGate(probe.NewEndpoint(probe.New(timeout), m.Probe.URL))
	}

	return r.Run(ctx, seq)
}

// Plan builds the sequence and checks each step without applying anything.
func (g *Groundcrew) Plan(ctx context.Context, m *manifest.Manifest, plat *platform.Platform) ([]runner.PlanEntry, error) {
	seq, err := g.BuildSequence(m, plat)
	if err != nil {
		return nil, fmt.Errorf("failed to build sequence: %w", err)
	}

	// Planning never prompts, so any prompter serves.
	r := runner.New(g.logger, prompt.NewPolicyPrompter(prompt.PolicyContinue, 1))
	return r.Plan(ctx, seq)
}

// Probe checks the manifest's probe URL once and returns the classified
// result.
func (g *Groundcrew) Probe(ctx context.Context, m *manifest.Manifest) (probe.Result, error) {
	if m.Probe.URL == "" {
		return probe.Result{}, fmt.Errorf("no probe URL configured")
	}
	timeout, err := m.Probe.TimeoutDuration()
	if err != nil {
		return probe.Result{}, err
	}
	return probe.New(timeout).Probe(ctx, m.Probe.URL), nil
}

// selectPrompter picks the prompter for a run: an explicit override first,
// then the manifest policy, then the interactive terminal prompter.
func (g *Groundcrew) selectPrompter(m *manifest.Manifest) ports.Prompter {
	if g.prompter != nil {
		return g.prompter
	}
	if m.Prompt.Policy != "" {
		// Manifest validation already rejected unknown policy names.
		if policy, err := prompt.ParsePolicy(m.Prompt.Policy); err == nil {
			return prompt.NewPolicyPrompter(policy, m.Prompt.MaxRetries)
		}
	}
	return prompt.NewTerminalPrompter()
}

// PrintPlan outputs a human-readable plan summary.
func (g *Groundcrew) PrintPlan(entries []runner.PlanEntry) {
	g.printf("\n%s\n\n", g.styles.Title.Render("Groundcrew Plan"))

	var needsApply, unknown int
	for _, entry := range entries {
		switch {
		case entry.CheckError() != nil:
			unknown++
			g.printf("  %s %s (check failed: %v)\n",
				g.styles.Error.Render("?"), entry.StepID(), entry.CheckError())
		case entry.Status() == step.StatusSatisfied:
			g.printf("  %s %s\n", g.styles.Muted.Render("✓"), entry.StepID())
		default:
			needsApply++
			marker := g.styles.Success.Render("+")
			if entry.Criticality() == step.Advisory {
				marker = g.styles.Warning.Render("+")
			}
			g.printf("  %s %s (%s)\n", marker, entry.StepID(), entry.Label())
		}
	}

	if needsApply == 0 && unknown == 0 {
		g.printf("\nNo changes needed. Your machine is ready.\n")
		return
	}

	g.printf("\nSteps: %d total, %d to apply, %d satisfied\n",
		len(entries), needsApply, len(entries)-needsApply-unknown)
	g.printf("\nRun 'groundcrew apply' to execute this plan.\n")
}

// PrintReport outputs run results.
func (g *Groundcrew) PrintReport(report *runner.Report) {
	g.printf("\n%s\n\n", g.styles.Title.Render("Run Report"))

	for _, rec := range report.Records() {
		switch rec.Outcome() {
		case runner.OutcomeSkipped:
			g.printf("  %s %s (already satisfied)\n",
				g.styles.Muted.Render("-"), rec.StepID())
		case runner.OutcomeSucceeded:
			g.printf("  %s %s (%s)\n",
				g.styles.Success.Render("✓"), rec.StepID(),
				rec.Duration().Round(time.Millisecond))
		case runner.OutcomeFailedAdvisory:
			g.printf("  %s %s: %v\n",
				g.styles.Warning.Render("!"), rec.StepID(), rec.Error())
		case runner.OutcomeFailedAcknowledged:
			g.printf("  %s %s (continued): %v\n",
				g.styles.Error.Render("✗"), rec.StepID(), rec.Error())
		case runner.OutcomeAborted:
			g.printf("  %s %s (aborted)\n",
				g.styles.Error.Render("✗"), rec.StepID())
		}
	}

	s := report.Summary()
	g.printf("\nSummary: %d steps, %d satisfied, %d applied, %d acknowledged, %d advisory, %d aborted\n",
		s.Total, s.Skipped, s.Succeeded, s.Acknowledged, s.Advisory, s.Aborted)

	if report.AllSatisfied() {
		g.printf("Nothing to do. Your machine is ready.\n")
	}
}

// printf writes to the output writer, ignoring errors.
func (g *Groundcrew) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(g.out, format, args...)
}
