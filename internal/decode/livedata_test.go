package decode

import (
	"errors"
	"testing"
	"time"
)

// livedataDoc is a trimmed-down but structurally faithful live-data
// document covering all three section shapes.
const livedataDoc = `{
	"common_list": [
		{"id": "0x02", "val": "24.2", "unit": "C"},
		{"id": "0x07", "val": "56%"},
		{"id": "0x0B", "val": "1.6 m/s"},
		{"id": "0x0A", "val": "306"}
	],
	"wh25": [
		{"intemp": "25.6", "inhumi": "48%", "abs": "1009.0 hPa", "rel": "1010.5 hPa"}
	],
	"rain": [
		{"id": "0x0D", "val": "0.0 mm"},
		{"id": "0x0E", "val": "0.0 mm/Hr"},
		{"id": "0x13", "val": "432.5 mm"}
	],
	"lightning": [
		{"distance": "16.0 km", "timestamp": "05/27/2025 11:48:12", "count": "3"}
	],
	"ch_aisle": [
		{"channel": "1", "temp": "20.4", "humidity": "45%"},
		{"channel": "3", "temp": "19.1", "humidity": "61%"}
	]
}`

func TestLiveData_Decode(t *testing.T) {
	at := time.Date(2025, 5, 27, 11, 48, 20, 0, time.UTC)

	reading, err := NewLiveData().Decode([]byte(livedataDoc), at)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if !reading.CapturedAt.Equal(at) {
		t.Errorf("CapturedAt = %v, want %v", reading.CapturedAt, at)
	}

	wantNumbers := map[string]float64{
		"common_list.0x02.val": 24.2,
		"common_list.0x07.val": 56,
		"common_list.0x0B.val": 1.6,
		"common_list.0x0A.val": 306,
		"wh25.intemp":          25.6,
		"wh25.inhumi":          48,
		"wh25.abs":             1009.0,
		"wh25.rel":             1010.5,
		"rain.0x0D.val":        0,
		"rain.0x0E.val":        0,
		"rain.0x13.val":        432.5,
		"lightning.distance":   16.0,
		"lightning.count":      3,
		"ch_aisle.1.temp":      20.4,
		"ch_aisle.1.humidity":  45,
		"ch_aisle.3.temp":      19.1,
		"ch_aisle.3.humidity":  61,
	}

	for key, want := range wantNumbers {
		val, ok := reading.Fields[key]
		if !ok {
			t.Errorf("Fields[%q] absent, want %v", key, want)
			continue
		}
		if val.Kind != KindNumber {
			t.Errorf("Fields[%q].Kind = %v, want KindNumber", key, val.Kind)
		}
		if val.Num != want {
			t.Errorf("Fields[%q] = %v, want %v", key, val.Num, want)
		}
	}

	// the lightning timestamp carries no number and stays textual
	ts, ok := reading.Fields["lightning.timestamp"]
	if !ok {
		t.Fatal(`Fields["lightning.timestamp"] absent, want text value`)
	}
	if ts.Kind != KindText {
		t.Errorf("timestamp kind = %v, want KindText", ts.Kind)
	}
	if ts.Text != "05/27/2025 11:48:12" {
		t.Errorf("timestamp = %q, want %q", ts.Text, "05/27/2025 11:48:12")
	}
}

// TestLiveData_Decode_OutOfRangeField verifies that one implausible
// sensor value is dropped while every other field survives.
func TestLiveData_Decode_OutOfRangeField(t *testing.T) {
	doc := `{
		"common_list": [
			{"id": "0x02", "val": "999.9", "unit": "C"},
			{"id": "0x07", "val": "56%"}
		],
		"wh25": [{"intemp": "25.6"}]
	}`

	reading, err := NewLiveData().Decode([]byte(doc), time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if _, ok := reading.Fields["common_list.0x02.val"]; ok {
		t.Error("out-of-range outdoor temperature should be absent")
	}
	if got, ok := reading.Fields["common_list.0x07.val"]; !ok || got.Num != 56 {
		t.Errorf(`Fields["common_list.0x07.val"] = %v (present=%v), want 56`, got.Num, ok)
	}
	if got, ok := reading.Fields["wh25.intemp"]; !ok || got.Num != 25.6 {
		t.Errorf(`Fields["wh25.intemp"] = %v (present=%v), want 25.6`, got.Num, ok)
	}
}

// TestLiveData_Decode_ChannelRanges verifies that channelized sections
// share one range entry across channels.
func TestLiveData_Decode_ChannelRanges(t *testing.T) {
	doc := `{
		"ch_aisle": [
			{"channel": "1", "temp": "20.4"},
			{"channel": "2", "temp": "-999.0"}
		]
	}`

	reading, err := NewLiveData().Decode([]byte(doc), time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if _, ok := reading.Fields["ch_aisle.2.temp"]; ok {
		t.Error("out-of-range channel 2 temperature should be absent")
	}
	if _, ok := reading.Fields["ch_aisle.1.temp"]; !ok {
		t.Error("channel 1 temperature should be present")
	}
}

// TestLiveData_Decode_UnknownFields verifies forward compatibility:
// sections and fields this decoder has never heard of are decoded under
// their native keys instead of being rejected.
func TestLiveData_Decode_UnknownFields(t *testing.T) {
	doc := `{
		"ch_new_sensor": [{"id": "0x99", "val": "42.0"}],
		"co2": [{"CO2": "419", "CO2_24H": "410"}]
	}`

	reading, err := NewLiveData().Decode([]byte(doc), time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if got, ok := reading.Fields["ch_new_sensor.0x99.val"]; !ok || got.Num != 42.0 {
		t.Errorf(`Fields["ch_new_sensor.0x99.val"] = %v (present=%v), want 42`, got.Num, ok)
	}
	if got, ok := reading.Fields["co2.CO2"]; !ok || got.Num != 419 {
		t.Errorf(`Fields["co2.CO2"] = %v (present=%v), want 419`, got.Num, ok)
	}
}

func TestLiveData_Decode_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind ErrorKind
	}{
		{"empty payload", "", ErrMalformed},
		{"whitespace payload", "   \n", ErrMalformed},
		{"invalid JSON", `{"common_list": [`, ErrMalformed},
		{"no usable fields", `{}`, ErrMalformed},
		{"top-level array", `[1, 2, 3]`, ErrUnsupportedVersion},
		{"top-level scalar", `"ok"`, ErrUnsupportedVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLiveData().Decode([]byte(tt.body), time.Now())
			if err == nil {
				t.Fatal("Decode() error = nil, want structural error")
			}
			var derr *Error
			if !errors.As(err, &derr) {
				t.Fatalf("Decode() error type = %T, want *Error", err)
			}
			if derr.Kind != tt.kind {
				t.Errorf("error kind = %v, want %v", derr.Kind, tt.kind)
			}
		})
	}
}

// TestLiveData_Decode_AbsentMarkers verifies that the gateway's "no
// reading" markers do not materialize as fields.
func TestLiveData_Decode_AbsentMarkers(t *testing.T) {
	doc := `{
		"common_list": [
			{"id": "0x02", "val": "--"},
			{"id": "0x07", "val": ""},
			{"id": "0x0A", "val": "306"}
		]
	}`

	reading, err := NewLiveData().Decode([]byte(doc), time.Now())
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if _, ok := reading.Fields["common_list.0x02.val"]; ok {
		t.Error(`"--" marker should decode to an absent field`)
	}
	if _, ok := reading.Fields["common_list.0x07.val"]; ok {
		t.Error("empty value should decode to an absent field")
	}
	if _, ok := reading.Fields["common_list.0x0A.val"]; !ok {
		t.Error("wind direction should be present")
	}
}
