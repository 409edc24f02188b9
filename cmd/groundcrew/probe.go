package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe [url]",
	Short: "Check reachability of the gate endpoint",
	Long: `Probe sends one HTTP GET to the gate endpoint and classifies the result.

A 200, 301, or 302 response means reachable. Anything else is reported
with a reason tag (dns, refused, timeout, tls, or status:<code>), which
usually distinguishes a missing VPN connection from a broken endpoint.

The URL defaults to probe.url from the manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(_ *cobra.Command, args []string) error {
	ctx, cancel := runContext()
	defer cancel()

	m, err := loadManifest()
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}
	if len(args) == 1 {
		m.Probe.URL = args[0]
	}

	gc := buildApp(os.Stdout)

	result, err := gc.Probe(ctx, m)
	if err != nil {
		return err
	}

	if result.Reachable {
		fmt.Printf("reachable: %s (status %d)\n", m.Probe.URL, result.StatusCode)
		return nil
	}

	fmt.Printf("unreachable: %s (%s)\n", m.Probe.URL, result.ReasonTag())
	return fmt.Errorf("endpoint unreachable")
}
