package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
)

// mockSensors holds the drifting sensor state of the fake device.
type mockSensors struct {
	outTemp  float64
	humidity float64
	inTemp   float64
	pressure float64
}

// StartMockGateway runs a fake weather gateway that serves a live-data
// document with slowly drifting sensor values.
// Call this in a goroutine before creating the bridge.
func StartMockGateway(addr string) {
	var (
		mu      sync.Mutex
		sensors = mockSensors{
			outTemp:  18.5,
			humidity: 62,
			inTemp:   21.3,
			pressure: 1013.2,
		}
	)

	http.HandleFunc("/get_livedata_info", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		// random walk, clamped to plausible values
		sensors.outTemp += (rand.Float64() - 0.5) * 0.4
		sensors.humidity = clamp(sensors.humidity+(rand.Float64()-0.5)*2, 20, 95)
		sensors.inTemp += (rand.Float64() - 0.5) * 0.2
		sensors.pressure += (rand.Float64() - 0.5) * 0.3
		s := sensors
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		doc := fmt.Sprintf(`{
  "common_list": [
    {"id": "0x02", "val": "%.1f", "unit": "C"},
    {"id": "0x07", "val": "%.0f%%"}
  ],
  "wh25": [{"intemp": "%.1f", "inhumi": "45%%", "abs": "%.1f hPa", "rel": "%.1f hPa"}],
  "rain": [{"id": "0x0E", "val": "0.0 mm/Hr"}]
}`, s.outTemp, s.humidity, s.inTemp, s.pressure, s.pressure+1.1)
		if _, err := w.Write([]byte(doc)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	http.HandleFunc("/get_version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version": "GW1100A_V2.4.3"}`))
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock gateway error", "error", err)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
