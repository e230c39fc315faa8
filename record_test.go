package gwbridge

import (
	"testing"
	"time"
)

func TestNewRecord(t *testing.T) {
	now := time.Now()
	rec := NewRecord(now)

	if !rec.Time.Equal(now) {
		t.Errorf("record time = %v, want %v", rec.Time, now)
	}
	if rec.Fields == nil {
		t.Error("record fields map is nil, want empty map")
	}
	if len(rec.Fields) != 0 {
		t.Errorf("new record has %d fields, want 0", len(rec.Fields))
	}
}

func TestRecord_SetAndHas(t *testing.T) {
	rec := NewRecord(time.Now())

	if rec.Has("outTemp") {
		t.Error("Has() = true on empty record")
	}

	rec.Set("outTemp", 21.5)
	if !rec.Has("outTemp") {
		t.Error("Has() = false after Set")
	}
	if rec.Fields["outTemp"] != 21.5 {
		t.Errorf("outTemp = %v, want 21.5", rec.Fields["outTemp"])
	}

	rec.Set("outTemp", 22.0)
	if rec.Fields["outTemp"] != 22.0 {
		t.Errorf("Set did not replace: outTemp = %v, want 22.0", rec.Fields["outTemp"])
	}
}

func TestRecord_SetOnNilFields(t *testing.T) {
	rec := &Record{Time: time.Now()}
	rec.Set("inTemp", 19.0)

	if rec.Fields["inTemp"] != 19.0 {
		t.Errorf("inTemp = %v, want 19.0", rec.Fields["inTemp"])
	}
}
