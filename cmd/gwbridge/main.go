// Package main is the entry point for the gwbridge CLI.
//
// gwbridge can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	gwbridge run -c config.yaml      # Poll the gateway and emit records
//	gwbridge probe -a 192.168.1.10   # One-shot fetch against a live device
//	gwbridge validate -c config.yaml # Validate configuration
//	gwbridge version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "gwbridge",
	Short: "Poll a LAN weather gateway and emit sensor records",
	Long: `gwbridge polls a LAN weather/environmental gateway over HTTP,
decodes its live-data document, and emits one record per emission cycle
as a JSON line on stdout.

Quick start:
  1. Create a config file (gwbridge.yaml)
  2. Run: gwbridge run -c gwbridge.yaml

Example config:
  gateway:
    address: 192.168.1.10
  poll_interval: 20s
  staleness_boundary: 60s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this gwbridge binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gwbridge %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
