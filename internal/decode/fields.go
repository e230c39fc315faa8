package decode

import (
	"strconv"
	"strings"
)

// Range declares the valid interval for a numeric sensor field. Values
// outside it are physically implausible and indicate a faulty or
// disconnected sensor reporting a filler value.
type Range struct {
	Min, Max float64
}

// defaultRanges is keyed by gateway-native field key. Channelized
// sections ("ch_aisle.3.temp") are looked up with the channel number
// elided ("ch_aisle.temp"), so one entry covers all channels.
//
// Units are the gateway's native metric units: degrees C, percent RH,
// hPa, mm, m/s, km, W/m2.
var defaultRanges = map[string]Range{
	"common_list.0x02.val": {Min: -40, Max: 60},   // outdoor temperature
	"common_list.0x03.val": {Min: -60, Max: 60},   // dew point
	"common_list.0x07.val": {Min: 0, Max: 100},    // outdoor humidity
	"common_list.0x0A.val": {Min: 0, Max: 360},    // wind direction
	"common_list.0x0B.val": {Min: 0, Max: 75},     // wind speed
	"common_list.0x0C.val": {Min: 0, Max: 75},     // gust speed
	"common_list.0x15.val": {Min: 0, Max: 2000},   // solar radiation
	"common_list.0x17.val": {Min: 0, Max: 17},     // UV index
	"common_list.3.val":    {Min: -60, Max: 60},   // feels like
	"common_list.4.val":    {Min: -60, Max: 60},   // apparent temperature
	"wh25.intemp":          {Min: -20, Max: 60},
	"wh25.inhumi":          {Min: 0, Max: 100},
	"wh25.abs":             {Min: 300, Max: 1100},
	"wh25.rel":             {Min: 300, Max: 1100},
	"lightning.distance":   {Min: 0, Max: 40},
	"lightning.count":      {Min: 0, Max: 999999},
	"rain.0x0D.val":        {Min: 0, Max: 9999},
	"rain.0x0E.val":        {Min: 0, Max: 9999},
	"rain.0x10.val":        {Min: 0, Max: 9999},
	"rain.0x11.val":        {Min: 0, Max: 9999},
	"rain.0x12.val":        {Min: 0, Max: 9999},
	"rain.0x13.val":        {Min: 0, Max: 99999},
	"piezoRain.0x0D.val":   {Min: 0, Max: 9999},
	"piezoRain.0x0E.val":   {Min: 0, Max: 9999},
	"piezoRain.0x10.val":   {Min: 0, Max: 9999},
	"piezoRain.0x11.val":   {Min: 0, Max: 9999},
	"piezoRain.0x12.val":   {Min: 0, Max: 9999},
	"piezoRain.0x13.val":   {Min: 0, Max: 99999},
	"ch_aisle.temp":        {Min: -40, Max: 60},
	"ch_aisle.humidity":    {Min: 0, Max: 100},
	"ch_soil.humidity":     {Min: 0, Max: 100},
	"ch_temp.temp":         {Min: -40, Max: 60},
	"ch_pm25.PM25":         {Min: 0, Max: 1000},
	"ch_leaf.humidity":     {Min: 0, Max: 100},
	"ch_lds.air":           {Min: 0, Max: 1200},
	"ch_lds.depth":         {Min: 0, Max: 1200},
}

// rangeFor looks up the valid range for a field key, normalizing away
// the channel component for channelized sections.
func rangeFor(ranges map[string]Range, key string) (Range, bool) {
	if r, ok := ranges[key]; ok {
		return r, true
	}
	parts := strings.Split(key, ".")
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[1]); err == nil {
			r, ok := ranges[parts[0]+"."+parts[2]]
			return r, ok
		}
	}
	return Range{}, false
}
