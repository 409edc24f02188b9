package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundcrew/internal/adapters/logging"
	"github.com/felixgeelhaar/groundcrew/internal/adapters/prompt"
	"github.com/felixgeelhaar/groundcrew/internal/app"
	"github.com/felixgeelhaar/groundcrew/internal/domain/manifest"
	"github.com/felixgeelhaar/groundcrew/internal/domain/platform"
	"github.com/felixgeelhaar/groundcrew/internal/domain/step"
	"github.com/felixgeelhaar/groundcrew/internal/ports"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	jsonLog bool
	yesFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "groundcrew",
	Short: "A dev machine provisioning runner",
	Long: `Groundcrew provisions a development workstation from a declarative manifest.

Each step checks whether the machine already satisfies it, applies the
change only when needed, and verifies the result. Blocking failures pause
for an operator decision; advisory failures are recorded and the run
continues.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
	RunE:          runApply,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to the manifest (default: "+manifest.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "emit log lines as JSON")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "acknowledge blocking failures without prompting")

	_ = rootCmd.RegisterFlagCompletionFunc("config", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
	})

	rootCmd.AddCommand(versionCmd)
}

// runContext returns a context cancelled on SIGINT or SIGTERM, so an
// interrupt unblocks a pending prompt and stops the run.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// buildApp assembles the application from the global flags.
func buildApp(out io.Writer) *app.Groundcrew {
	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}

	opts := []app.Option{
		app.WithLogger(logging.NewConsoleLogger(
			logging.WithOutput(os.Stderr),
			logging.WithLevel(level),
			logging.WithJSONFormat(jsonLog),
		)),
	}
	if yesFlag {
		opts = append(opts, app.WithPrompter(prompt.NewPolicyPrompter(prompt.PolicyContinue, 1)))
	}

	return app.New(out, opts...)
}

// loadManifest reads and validates the manifest at the configured path.
func loadManifest() (*manifest.Manifest, error) {
	return manifest.Load(cfgFile)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var stepErr *step.StepError
	if errors.As(err, &stepErr) {
		msg := stepErr.Message
		if stepErr.StepID != "" {
			msg += fmt.Sprintf(" (step %s)", stepErr.StepID)
		}
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		if verbose && stepErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", stepErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}

// detectPlatform resolves the current platform.
func detectPlatform() (*platform.Platform, error) {
	plat, err := platform.Detect()
	if err != nil {
		return nil, fmt.Errorf("unsupported platform: %w", err)
	}
	return plat, nil
}
