package gwbridge

import "fmt"

// FieldMap translates gateway-native field keys to host field names.
// Only mapped fields are copied into records; everything else in a
// [Reading] stays available to callbacks and custom decoders but never
// reaches the host pipeline. Map extensions (see
// [WithFieldMapExtensions]) add or override entries, so any native key
// the gateway reports can be surfaced under a host name of the caller's
// choosing.
type FieldMap map[string]string

// DefaultFieldMap returns the standard translation from gateway-native
// keys to host field names. The caller owns the returned map and may
// modify it freely.
func DefaultFieldMap() FieldMap {
	m := FieldMap{
		"common_list.0x02.val": "outTemp",
		"common_list.0x03.val": "dewpoint",
		"common_list.0x07.val": "outHumidity",
		"common_list.0x0A.val": "windDir",
		"common_list.0x0B.val": "windSpeed",
		"common_list.0x0C.val": "windGust",
		"common_list.0x19.val": "daymaxwind",
		"common_list.0x15.val": "radiation",
		"common_list.0x17.val": "UV",
		"wh25.intemp":          "inTemp",
		"wh25.inhumi":          "inHumidity",
		"wh25.abs":             "pressure",
		"wh25.rel":             "barometer",
		"rain.0x0D.val":        "rainEvent",
		"rain.0x0E.val":        "rainRate",
		"rain.0x10.val":        "dayRain",
		"rain.0x11.val":        "weekRain",
		"rain.0x12.val":        "monthRain",
		"rain.0x13.val":        "yearRain",
		"piezoRain.0x0D.val":   "p_rainEvent",
		"piezoRain.0x0E.val":   "p_rainRate",
		"piezoRain.0x10.val":   "p_dayRain",
		"piezoRain.0x11.val":   "p_weekRain",
		"piezoRain.0x12.val":   "p_monthRain",
		"piezoRain.0x13.val":   "p_yearRain",
		"lightning.count":      "lightning_strike_count",
		"lightning.distance":   "lightning_distance",
		"lightning.timestamp":  "lightning_last_det_time",
	}

	// channelized sensor suites, battery state included
	for ch := 1; ch <= 8; ch++ {
		m[fmt.Sprintf("ch_aisle.%d.temp", ch)] = fmt.Sprintf("extraTemp%d", ch)
		m[fmt.Sprintf("ch_aisle.%d.humidity", ch)] = fmt.Sprintf("extraHumid%d", ch)
		m[fmt.Sprintf("ch_aisle.%d.battery", ch)] = fmt.Sprintf("extraBatt%d", ch)
		m[fmt.Sprintf("ch_temp.%d.temp", ch)] = fmt.Sprintf("soilTemp%d", ch)
		m[fmt.Sprintf("ch_soil.%d.humidity", ch)] = fmt.Sprintf("soilMoist%d", ch)
		m[fmt.Sprintf("ch_soil.%d.battery", ch)] = fmt.Sprintf("soilMoistBatt%d", ch)
	}
	for ch := 1; ch <= 4; ch++ {
		m[fmt.Sprintf("ch_pm25.%d.PM25", ch)] = fmt.Sprintf("pm2_5_ch%d", ch)
		m[fmt.Sprintf("ch_pm25.%d.battery", ch)] = fmt.Sprintf("pm25Batt%d", ch)
		m[fmt.Sprintf("ch_leak.%d.status", ch)] = fmt.Sprintf("leak%d", ch)
		m[fmt.Sprintf("ch_leak.%d.battery", ch)] = fmt.Sprintf("leakBatt%d", ch)
	}

	return m
}

// merge returns a copy of base with ext entries added or overriding.
func (base FieldMap) merge(ext FieldMap) FieldMap {
	merged := make(FieldMap, len(base)+len(ext))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range ext {
		merged[k] = v
	}
	return merged
}
