package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/gwbridge"
)

func main() {
	// start mock gateway (see mock_gateway.go)
	go StartMockGateway(":9999")
	time.Sleep(100 * time.Millisecond)

	b, err := gwbridge.New("localhost:9999",
		gwbridge.WithPollInterval(3*time.Second),
		gwbridge.WithStalenessBoundary(10*time.Second),
		gwbridge.WithStartupGrace(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create bridge", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   gwbridge Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Polling a mock gateway on :9999 every 3s and        ║")
	fmt.Println("  ║   emitting one record every 5s                        ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b.Start(ctx)
	defer b.Stop()

	// driver mode: the bridge is the sole record source
	for ctx.Err() == nil {
		rec := b.NextRecord(ctx)
		fmt.Printf("%s  outTemp=%v  outHumidity=%v  inTemp=%v  barometer=%v\n",
			rec.Time.Format(time.TimeOnly),
			rec.Fields["outTemp"], rec.Fields["outHumidity"],
			rec.Fields["inTemp"], rec.Fields["barometer"],
		)

		select {
		case <-time.After(5 * time.Second):
		case <-ctx.Done():
		}
	}
}
