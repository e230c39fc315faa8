// Standalone mock gateway for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockgateway
//
// Then in another terminal:
//
//	go run ./cmd/gwbridge run -c example/gwbridge.yaml
//	go run ./cmd/gwbridge probe -a localhost:9999
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
)

func main() {
	fmt.Println("Mock gateway starting on :9999")
	fmt.Println("Serving /get_livedata_info with drifting sensor values")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu       sync.Mutex
		outTemp  = 18.5
		humidity = 62.0
		inTemp   = 21.3
		pressure = 1013.2
	)

	http.HandleFunc("/get_livedata_info", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		outTemp += (rand.Float64() - 0.5) * 0.4
		humidity += (rand.Float64() - 0.5) * 2
		if humidity < 20 {
			humidity = 20
		}
		if humidity > 95 {
			humidity = 95
		}
		inTemp += (rand.Float64() - 0.5) * 0.2
		pressure += (rand.Float64() - 0.5) * 0.3
		doc := fmt.Sprintf(`{
  "common_list": [
    {"id": "0x02", "val": "%.1f", "unit": "C"},
    {"id": "0x07", "val": "%.0f%%"}
  ],
  "wh25": [{"intemp": "%.1f", "inhumi": "45%%", "abs": "%.1f hPa", "rel": "%.1f hPa"}],
  "rain": [{"id": "0x0E", "val": "0.0 mm/Hr"}]
}`, outTemp, humidity, inTemp, pressure, pressure+1.1)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(doc))
	})

	http.HandleFunc("/get_version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version": "GW1100A_V2.4.3"}`))
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
