package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

const snapshotFixture = `{
	"observational": {
		"observations": {
			"temperature": {"temperature": 21.5, "apparentTemperature": 19.8},
			"humidity": {"percentage": 65},
			"dewPoint": {"temperature": 14.2},
			"pressure": {"pressure": 1013.2},
			"wind": {"speed": 14.8, "gustSpeed": 22.2, "direction": 247.5, "directionText": "WSW"},
			"rainfall": {"lastHourAmount": 0, "todayAmount": 1.2, "since9AMAmount": 1.2},
			"cloud": {"oktas": 4}
		}
	},
	"location": {"id": 4988, "name": "Bondi Beach", "timezone": "Australia/Sydney"},
	"forecasts": {
		"weather": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{"dateTime": "2024-01-20 00:00:00", "precisCode": "partly-cloudy", "precis": "Partly cloudy", "min": 18, "max": 27}
			]},
			{"dateTime": "2024-01-21 00:00:00", "entries": [
				{"dateTime": "2024-01-21 00:00:00", "precisCode": "shower-or-two", "precis": "Shower or two", "min": 17, "max": 23}
			]}
		]},
		"rainfall": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{"dateTime": "2024-01-20 00:00:00", "startRange": 2, "endRange": 8, "probability": 70}
			]},
			{"dateTime": "2024-01-21 00:00:00", "entries": [
				{"dateTime": "2024-01-21 00:00:00", "startRange": null, "endRange": 1, "probability": 10}
			]}
		]},
		"uv": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{"dateTime": "2024-01-20 00:00:00", "index": 9.1}
			]}
		]},
		"sunrisesunset": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{
					"firstLightDateTime": "2024-01-20 05:37:12",
					"lastLightDateTime": "2024-01-20 20:18:44",
					"moonrise": "2024-01-20 13:05:00",
					"moonset": "2024-01-20 23:58:00",
					"moonPhaseDescription": "Waxing Gibbous"
				}
			]}
		]},
		"tides": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{"dateTime": "2024-01-20 04:12:00", "type": "high", "height": 1.62},
				{"dateTime": "2024-01-20 10:30:00", "type": "low", "height": 0.41},
				{"dateTime": "2024-01-20 16:45:00", "type": "high", "height": 1.71},
				{"dateTime": "2024-01-20 23:02:00", "type": "low", "height": 0.38}
			]}
		]},
		"wind": {"days": [
			{"dateTime": "2024-01-20 00:00:00", "entries": [
				{"dateTime": "2024-01-20 08:00:00", "speed": 10.5, "direction": 120},
				{"dateTime": "2024-01-20 14:00:00", "speed": 18.3, "direction": 135}
			]}
		]}
	}
}`

func testSnapshot(t *testing.T) *weather.Snapshot {
	t.Helper()

	var payload struct {
		Observational map[string]any                    `json:"observational"`
		Location      map[string]any                    `json:"location"`
		Forecasts     map[string]*weather.ForecastGroup `json:"forecasts"`
	}
	if err := json.Unmarshal([]byte(snapshotFixture), &payload); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}

	return &weather.Snapshot{
		Observational: payload.Observational,
		Forecast:      weather.Forecast{Location: payload.Location, Forecasts: payload.Forecasts},
		FetchedAt:     time.Date(2024, 1, 20, 1, 0, 0, 0, time.UTC),
	}
}

func sydneyTime(t *testing.T, hour, min int) time.Time {
	t.Helper()

	tz, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}
	return time.Date(2024, 1, 20, hour, min, 0, 0, tz)
}

func descriptorByKey(t *testing.T, descs []Descriptor, key string) Descriptor {
	t.Helper()

	for _, d := range descs {
		if d.Key == key {
			return d
		}
	}
	t.Fatalf("no descriptor with key %q", key)
	return Descriptor{}
}

func TestObservationalSensorValues(t *testing.T) {
	snap := testSnapshot(t)

	tests := []struct {
		key  string
		want any
	}{
		{"temperature", 21.5},
		{"apparent_temperature", 19.8},
		{"humidity", 65.0},
		{"dewpoint", 14.2},
		{"pressure", 1013.2},
		{"wind_speed", 14.8},
		{"wind_gust", 22.2},
		{"wind_direction", 247.5},
		{"wind_direction_text", "WSW"},
		{"cloud", 4.0},
		{"rain_last_hour", 0.0},
		{"rain_today", 1.2},
		{"rain_since_9am", 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d := descriptorByKey(t, ObservationalSensors, tt.key)
			s := NewSensor(4988, d)

			if got := s.State(snap); got != tt.want {
				t.Errorf("State() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSensorMissingDataIsNil(t *testing.T) {
	d := descriptorByKey(t, ObservationalSensors, "temperature")
	s := NewSensor(4988, d)

	if got := s.State(nil); got != nil {
		t.Errorf("State(nil) = %v, want nil", got)
	}

	empty := &weather.Snapshot{}
	if got := s.State(empty); got != nil {
		t.Errorf("State(empty) = %v, want nil", got)
	}

	partial := &weather.Snapshot{Observational: map[string]any{"observations": map[string]any{}}}
	if got := s.State(partial); got != nil {
		t.Errorf("State(partial) = %v, want nil", got)
	}
}

func TestSensorUniqueID(t *testing.T) {
	d := descriptorByKey(t, ObservationalSensors, "temperature")
	s := NewSensor(4988, d)

	if s.UniqueID() != "4988_temperature" {
		t.Errorf("UniqueID() = %q", s.UniqueID())
	}
}

func TestSunMoonSensors(t *testing.T) {
	snap := testSnapshot(t)

	sunrise := NewSensor(4988, descriptorByKey(t, SunMoonSensors, "sunrise"))
	// 05:37:12 AEDT is 18:37:12 UTC the previous day.
	if got := sunrise.State(snap); got != "2024-01-19T18:37:12Z" {
		t.Errorf("sunrise = %v", got)
	}

	phase := NewSensor(4988, descriptorByKey(t, SunMoonSensors, "moon_phase"))
	if got := phase.State(snap); got != "Waxing Gibbous" {
		t.Errorf("moon phase = %v", got)
	}
}

func TestTideNextOccurrence(t *testing.T) {
	snap := testSnapshot(t)
	noon := sydneyTime(t, 12, 0)

	tests := []struct {
		key  string
		want any
	}{
		// 16:45 AEDT is 05:45 UTC.
		{"next_high_tide", "2024-01-20T05:45:00Z"},
		// 23:02 AEDT is 12:02 UTC.
		{"next_low_tide", "2024-01-20T12:02:00Z"},
		{"next_high_tide_height", 1.71},
		{"next_low_tide_height", 0.38},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d := descriptorByKey(t, TideSensors, tt.key)
			if got := ProjectAt(snap, d, noon); got != tt.want {
				t.Errorf("ProjectAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTideNilWhenAllInPast(t *testing.T) {
	snap := testSnapshot(t)
	nextDay := sydneyTime(t, 23, 59).Add(time.Hour)

	d := descriptorByKey(t, TideSensors, "next_high_tide")
	if got := ProjectAt(snap, d, nextDay); got != nil {
		t.Errorf("ProjectAt() = %v, want nil once every tide is past", got)
	}
}

func TestWindForecastFallsBackToFirstEntry(t *testing.T) {
	snap := testSnapshot(t)

	morning := sydneyTime(t, 6, 0)
	speed := descriptorByKey(t, WindForecastSensors, "wind_speed_forecast")
	if got := ProjectAt(snap, speed, morning); got != 10.5 {
		t.Errorf("morning wind speed = %v, want 10.5", got)
	}

	afternoon := sydneyTime(t, 12, 30)
	if got := ProjectAt(snap, speed, afternoon); got != 18.3 {
		t.Errorf("afternoon wind speed = %v, want 18.3", got)
	}

	// Every entry in the past: keep the first one instead of dropping out.
	lateNight := sydneyTime(t, 23, 0)
	if got := ProjectAt(snap, speed, lateNight); got != 10.5 {
		t.Errorf("late wind speed = %v, want first entry fallback 10.5", got)
	}
}

func TestUVSensors(t *testing.T) {
	snap := testSnapshot(t)

	index := NewSensor(4988, descriptorByKey(t, UVSensors, "uv_index"))
	if got := index.State(snap); got != 9.1 {
		t.Errorf("uv index = %v, want 9.1", got)
	}

	alert := NewSensor(4988, descriptorByKey(t, UVSensors, "uv_alert"))
	if got := alert.State(snap); got != "Very High" {
		t.Errorf("uv alert = %v, want Very High", got)
	}
}

func TestDailyForecastSensors(t *testing.T) {
	snap := testSnapshot(t)

	day0 := func(key string) Descriptor {
		d := descriptorByKey(t, DailySensorTemplates, key)
		d.Day = 0
		return d
	}

	if got := Project(snap, day0("forecast_condition")); got != "partlycloudy" {
		t.Errorf("condition = %v, want partlycloudy", got)
	}
	if got := Project(snap, day0("forecast_summary")); got != "Partly cloudy" {
		t.Errorf("summary = %v", got)
	}
	if got := Project(snap, day0("forecast_temp_max")); got != 27.0 {
		t.Errorf("temp max = %v, want 27", got)
	}
	if got := Project(snap, day0("forecast_rain")); got != 5.0 {
		t.Errorf("rain midpoint = %v, want 5", got)
	}
	if got := Project(snap, day0("forecast_rain_probability")); got != 70.0 {
		t.Errorf("rain probability = %v, want 70", got)
	}

	day1 := descriptorByKey(t, DailySensorTemplates, "forecast_rain")
	day1.Day = 1
	// startRange is null, so the open range collapses to endRange.
	if got := Project(snap, day1); got != 1.0 {
		t.Errorf("open range rain = %v, want 1", got)
	}

	uvDay1 := descriptorByKey(t, DailySensorTemplates, "forecast_uv_index")
	uvDay1.Day = 1
	if got := Project(snap, uvDay1); got != nil {
		t.Errorf("uv day 1 = %v, want nil beyond the uv series", got)
	}
}
