package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Provision the machine from the manifest",
	Long: `Apply runs every step in order and makes changes to your system.

Each step:
1. Checks whether the machine already satisfies it (skipped if so)
2. Applies the change
3. Verifies the change took effect

A blocking failure pauses for a retry/continue/abort decision unless a
prompt policy or --yes is set. Advisory failures never pause.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(_ *cobra.Command, _ []string) error {
	ctx, cancel := runContext()
	defer cancel()

	m, err := loadManifest()
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	plat, err := detectPlatform()
	if err != nil {
		return err
	}

	gc := buildApp(os.Stdout)

	report, err := gc.Run(ctx, m, plat)
	if report != nil {
		gc.PrintReport(report)
	}
	// Acknowledged and advisory failures are in the report but do not fail
	// the process; only an abort or cancellation does.
	return err
}
