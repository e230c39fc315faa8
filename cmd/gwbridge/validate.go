package main

import (
	"fmt"

	"github.com/jpalmerr/gwbridge/config"
	"github.com/spf13/cobra"
)

// validateCmd validates a config file without touching the device.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a gwbridge configuration file without polling the device.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  gwbridge validate -c gwbridge.yaml
  gwbridge validate --config /etc/gwbridge/gwbridge.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Gateway:            %s\n", cfg.Gateway.Address)
	fmt.Printf("  Poll interval:      %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Timeouts:           %s connect / %s read\n",
		cfg.ConnectTimeout.Duration(), cfg.ReadTimeout.Duration())
	fmt.Printf("  Retry ceiling:      %d\n", cfg.RetryCeiling)
	fmt.Printf("  Staleness boundary: %s\n", cfg.StalenessBoundary.Duration())
	fmt.Printf("  Field map entries:  %d custom\n", len(cfg.FieldMap))

	return nil
}
