package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jpalmerr/gwbridge"
	"github.com/jpalmerr/gwbridge/internal/decode"
	"github.com/jpalmerr/gwbridge/internal/transport"
	"github.com/spf13/cobra"
)

// probeCmd performs a single fetch+decode cycle against a live device.
var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "One-shot fetch against a live device",
	Long: `Fetch and decode the gateway's live-data document once, printing
every decoded field with its mapped host name. Useful for verifying
reachability and field mapping before running the bridge.

The device's firmware version is also queried, best effort.

Exit codes:
  0 - Fetch and decode succeeded
  1 - Device unreachable or payload undecodable

Example:
  gwbridge probe -a 192.168.1.10
  gwbridge probe -a gw1100.lan:8080 --path /livedata --timeout 10s`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringP("address", "a", "", "gateway IP or hostname (required)")
	probeCmd.Flags().String("path", "/get_livedata_info", "request path on the device")
	probeCmd.Flags().Duration("timeout", 5*time.Second, "total probe timeout")
	_ = probeCmd.MarkFlagRequired("address")
}

func runProbe(cmd *cobra.Command, args []string) error {
	address, _ := cmd.Flags().GetString("address")
	path, _ := cmd.Flags().GetString("path")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	base := address
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid gateway address %q", address)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	parsed.Path = path
	client := transport.NewClient(parsed.String(), timeout, timeout)
	defer client.Close()

	start := time.Now()
	body, err := client.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	elapsed := time.Since(start)

	reading, err := decode.NewLiveData().Decode(body, time.Now())
	if err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	fmt.Printf("Gateway reachable at %s (%s, %d bytes)\n", parsed.String(), elapsed.Round(time.Millisecond), len(body))
	if fw := fetchFirmware(ctx, parsed); fw != "" {
		fmt.Printf("Firmware: %s\n", fw)
	}
	fmt.Printf("Decoded %d fields:\n", len(reading.Fields))

	fieldMap := gwbridge.DefaultFieldMap()
	keys := make([]string, 0, len(reading.Fields))
	for k := range reading.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		val := reading.Fields[k]
		var rendered string
		switch val.Kind {
		case decode.KindNumber:
			rendered = fmt.Sprintf("%g", val.Num)
		case decode.KindText:
			rendered = val.Text
		}

		if host, ok := fieldMap[k]; ok {
			fmt.Printf("  %-28s %-12s -> %s\n", k, rendered, host)
		} else {
			fmt.Printf("  %-28s %-12s    (unmapped)\n", k, rendered)
		}
	}

	return nil
}

// fetchFirmware queries the device's version endpoint. Any failure just
// means no firmware line in the output.
func fetchFirmware(ctx context.Context, base *url.URL) string {
	u := *base
	u.Path = "/get_version"

	client := transport.NewClient(u.String(), 2*time.Second, 2*time.Second)
	defer client.Close()

	body, err := client.Fetch(ctx)
	if err != nil {
		return ""
	}

	var payload struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Version
}
