package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/gwbridge"
	"github.com/jpalmerr/gwbridge/config"
	"github.com/spf13/cobra"
)

const defaultEmitInterval = 10 * time.Second

// newLogger creates a JSON logger for CLI use.
func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// runCmd polls the gateway and emits records on stdout.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the gateway and emit records",
	Long: `Poll the gateway and emit one record per emission cycle as a JSON
line on stdout. Logs go to stderr.

The polling clock and the emission clock are independent: the gateway is
polled at the configured poll_interval while records are emitted at the
interval given by --emit. A record emitted while the gateway is
unreachable simply carries no sensor fields.

The process runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  gwbridge run -c gwbridge.yaml
  gwbridge run -c gwbridge.yaml --emit 30s`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	runCmd.Flags().Duration("emit", defaultEmitInterval, "record emission interval")
	_ = runCmd.MarkFlagRequired("config")
}

// emittedRecord is the stdout wire shape for one record.
type emittedRecord struct {
	Time   time.Time      `json:"time"`
	Fields map[string]any `json:"fields"`
}

func runRun(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	emitInterval, _ := cmd.Flags().GetDuration("emit")
	if emitInterval <= 0 {
		return fmt.Errorf("emit interval must be positive, got %s", emitInterval)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := newLogger(cfg.Level())
	logger.Info("config loaded",
		"gateway", cfg.Gateway.Address,
		"poll_interval", cfg.PollInterval.Duration().String(),
		"emit_interval", emitInterval.String(),
	)

	b, err := gwbridge.New(cfg.Gateway.Address, config.BuildOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	// set up context with signal handling - cancel on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b.Start(ctx)
	defer b.Stop()

	enc := json.NewEncoder(os.Stdout)
	ticker := time.NewTicker(emitInterval)
	defer ticker.Stop()

	// first record immediately (NextRecord handles the startup grace),
	// then one per tick
	for {
		rec := b.NextRecord(ctx)
		if ctx.Err() != nil {
			logger.Info("shutdown complete")
			return nil
		}
		if err := enc.Encode(emittedRecord{Time: rec.Time, Fields: rec.Fields}); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			logger.Info("shutdown complete")
			return nil
		}
	}
}
