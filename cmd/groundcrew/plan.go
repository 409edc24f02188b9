package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what changes groundcrew would make",
	Long: `Plan checks every step against the current machine state.

This command:
1. Loads the manifest
2. Assembles the step sequence for this platform
3. Runs each step's check (without making changes)
4. Shows which steps would be applied`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(_ *cobra.Command, _ []string) error {
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

	entries, err := gc.Plan(ctx, m, plat)
	if err != nil {
		return fmt.Errorf("plan failed: %w", err)
	}

	gc.PrintPlan(entries)
	return nil
}
