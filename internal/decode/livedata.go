package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LiveData decodes the gateway's live-data JSON document.
//
// The document is an object of sensor sections. Three section shapes
// occur in the wild and all are handled:
//
//   - id/val arrays: {"common_list":[{"id":"0x02","val":"24.2","unit":"C"},...]}
//     flattened to "common_list.0x02.val"
//   - channelized arrays: {"ch_aisle":[{"channel":"1","temp":"20.4","humidity":"45%"}]}
//     flattened to "ch_aisle.1.temp"
//   - named blocks: {"wh25":[{"intemp":"25.6","inhumi":"56%"}]}
//     flattened to "wh25.intemp"
//
// Values arrive as strings with unit suffixes ("0.0 mm", "56%"); the
// decoder strips the unit and keeps the number. Strings that carry no
// number (sensor state words, firmware strings) are kept as text.
// Unknown sections and unknown fields within a section are decoded
// anyway under their native keys, so newer gateway firmware does not
// break older bridges.
type LiveData struct {
	ranges map[string]Range
}

// NewLiveData creates a [LiveData] decoder with the default valid-range
// table. A numeric field outside its declared range is dropped from the
// Reading rather than failing the decode.
func NewLiveData() *LiveData {
	return &LiveData{ranges: defaultRanges}
}

// Decode implements [Decoder].
func (d *LiveData) Decode(body []byte, capturedAt time.Time) (*Reading, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, &Error{Kind: ErrMalformed, Err: errors.New("empty payload")}
	}

	var top any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &Error{Kind: ErrMalformed, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	doc, ok := top.(map[string]any)
	if !ok {
		return nil, &Error{Kind: ErrUnsupportedVersion, Err: fmt.Errorf("top-level JSON is %T, want object", top)}
	}

	fields := make(map[string]Value)
	for section, raw := range doc {
		switch v := raw.(type) {
		case []any:
			for _, elem := range v {
				entry, ok := elem.(map[string]any)
				if !ok {
					continue
				}
				d.flattenEntry(section, entry, fields)
			}
		case map[string]any:
			d.flattenBlock(section, v, fields)
		default:
			d.addField(section, raw, fields)
		}
	}

	if len(fields) == 0 {
		return nil, &Error{Kind: ErrMalformed, Err: errors.New("no sensor fields in payload")}
	}

	return &Reading{CapturedAt: capturedAt, Fields: fields}, nil
}

// flattenEntry flattens one array element under its section, keyed by
// "id" or "channel" when present.
func (d *LiveData) flattenEntry(section string, entry map[string]any, fields map[string]Value) {
	prefix := section
	var keyField string
	if id, ok := entry["id"].(string); ok && id != "" {
		prefix = section + "." + id
		keyField = "id"
	} else if ch, ok := stringish(entry["channel"]); ok && ch != "" {
		prefix = section + "." + ch
		keyField = "channel"
	}

	for k, v := range entry {
		if k == keyField || k == "unit" {
			continue
		}
		d.addField(prefix+"."+k, v, fields)
	}
}

// flattenBlock flattens a plain object section.
func (d *LiveData) flattenBlock(prefix string, block map[string]any, fields map[string]Value) {
	for k, v := range block {
		if k == "unit" {
			continue
		}
		switch nested := v.(type) {
		case map[string]any:
			d.flattenBlock(prefix+"."+k, nested, fields)
		default:
			d.addField(prefix+"."+k, v, fields)
		}
	}
}

// addField parses one scalar and stores it unless it is absent or out of
// its declared valid range.
func (d *LiveData) addField(key string, raw any, fields map[string]Value) {
	val, ok := parseScalar(raw)
	if !ok {
		return
	}
	if r, bounded := rangeFor(d.ranges, key); bounded && val.Kind == KindNumber {
		if val.Num < r.Min || val.Num > r.Max {
			// one bad sensor must not invalidate the Reading; the field
			// is simply absent this cycle
			return
		}
	}
	fields[key] = val
}

// parseScalar converts a raw JSON scalar to a [Value]. The second return
// is false when the field should be treated as absent.
func parseScalar(raw any) (Value, bool) {
	switch v := raw.(type) {
	case float64:
		return Number(v), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "--" || s == "None" {
			return Value{}, false
		}
		// unit suffixes are either glued ("56%") or space-separated
		// ("0.0 mm", "16.0 km")
		numPart := strings.TrimSuffix(s, "%")
		if i := strings.IndexByte(numPart, ' '); i > 0 {
			numPart = numPart[:i]
		}
		if n, err := strconv.ParseFloat(numPart, 64); err == nil {
			return Number(n), true
		}
		return Text(s), true
	default:
		return Value{}, false
	}
}

// stringish renders a JSON scalar used as a key component ("channel" is a
// string in some firmware versions and a number in others).
func stringish(raw any) (string, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}
