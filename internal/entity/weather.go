package entity

import (
	"fmt"
	"time"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

// Weather is the summary entity: current conditions plus the merged daily
// forecast. The rainfall and uv columns follow the entry toggles captured
// at build time; the entity set is rebuilt when options change.
type Weather struct {
	stationID   int
	stationName string
	rainfall    bool
	uv          bool
}

// NewWeather builds the summary entity for one station.
func NewWeather(stationID int, stationName string, rainfall, uv bool) *Weather {
	return &Weather{
		stationID:   stationID,
		stationName: stationName,
		rainfall:    rainfall,
		uv:          uv,
	}
}

// Conditions is the current state block of the weather entity.
type Conditions struct {
	Condition           string   `json:"condition"`
	Temperature         *float64 `json:"temperature,omitempty"`
	ApparentTemperature *float64 `json:"apparentTemperature,omitempty"`
	Humidity            *float64 `json:"humidity,omitempty"`
	Pressure            *float64 `json:"pressure,omitempty"`
	WindSpeed           *float64 `json:"windSpeed,omitempty"`
	WindGust            *float64 `json:"windGust,omitempty"`
	WindBearing         *float64 `json:"windBearing,omitempty"`
	CloudCoverage       *float64 `json:"cloudCoverage,omitempty"`
}

// DailyForecast is one day of the merged daily forecast.
type DailyForecast struct {
	DateTime                 string   `json:"dateTime"`
	Condition                string   `json:"condition"`
	TempMax                  *float64 `json:"tempMax,omitempty"`
	TempMin                  *float64 `json:"tempMin,omitempty"`
	Precipitation            *float64 `json:"precipitation,omitempty"`
	PrecipitationProbability *float64 `json:"precipitationProbability,omitempty"`
	UVIndex                  *float64 `json:"uvIndex,omitempty"`
}

func (w *Weather) UniqueID() string { return fmt.Sprintf("%d_weather", w.stationID) }
func (w *Weather) Key() string      { return "weather" }
func (w *Weather) Name() string     { return w.stationName }
func (w *Weather) Kind() Kind       { return KindWeather }

func (w *Weather) Meta() Meta {
	return Meta{Icon: "mdi:weather-partly-cloudy"}
}

// State is the current condition string, nil before the first snapshot or
// when today's forecast is missing.
func (w *Weather) State(snap *weather.Snapshot) any {
	c := w.condition(snap)
	if c == "" {
		return nil
	}
	return c
}

// Attributes flattens the current block and attaches the daily forecast.
func (w *Weather) Attributes(snap *weather.Snapshot) map[string]any {
	return map[string]any{
		"current":  w.Current(snap),
		"forecast": w.Forecast(snap),
	}
}

// condition maps today's precis code, empty when absent.
func (w *Weather) condition(snap *weather.Snapshot) string {
	entry, ok := snap.DayEntry("weather", 0)
	if !ok {
		return ""
	}
	code, _ := entry["precisCode"].(string)
	if code == "" {
		return ""
	}
	return weather.Condition(code)
}

// Current assembles the current conditions view. Cloud cover converts
// upstream oktas (0 to 8) into a percentage.
func (w *Weather) Current(snap *weather.Snapshot) Conditions {
	c := Conditions{Condition: w.condition(snap)}

	c.Temperature = obsFloat(snap, "temperature", "temperature")
	c.ApparentTemperature = obsFloat(snap, "temperature", "apparentTemperature")
	c.Humidity = obsFloat(snap, "humidity", "percentage")
	c.Pressure = obsFloat(snap, "pressure", "pressure")
	c.WindSpeed = obsFloat(snap, "wind", "speed")
	c.WindGust = obsFloat(snap, "wind", "gustSpeed")
	c.WindBearing = obsFloat(snap, "wind", "direction")

	if oktas := obsFloat(snap, "cloud", "oktas"); oktas != nil {
		pct := *oktas / 8 * 100
		c.CloudCoverage = &pct
	}
	return c
}

// Forecast merges the weather, rainfall and uv day series into one list
// keyed by day index. Days without a weather entry or an unparseable date
// are skipped.
func (w *Weather) Forecast(snap *weather.Snapshot) []DailyForecast {
	days := snap.ForecastDays("weather")
	if len(days) == 0 {
		return nil
	}
	tz := snap.Timezone()

	var out []DailyForecast
	for idx, day := range days {
		if len(day.Entries) == 0 {
			continue
		}
		entry := day.Entries[0]

		raw, _ := entry["dateTime"].(string)
		ts, ok := weather.ParseTime(raw, tz)
		if !ok {
			continue
		}

		code, _ := entry["precisCode"].(string)
		f := DailyForecast{
			DateTime:  ts.Format(time.RFC3339),
			Condition: weather.Condition(code),
			TempMax:   entryFloat(entry, "max"),
			TempMin:   entryFloat(entry, "min"),
		}

		if w.rainfall {
			if re, ok := snap.DayEntry("rainfall", idx); ok {
				if amount, ok := rainRange(re); ok {
					f.Precipitation = &amount
				}
				f.PrecipitationProbability = entryFloat(re, "probability")
			}
		}
		if w.uv {
			if ue, ok := snap.DayEntry("uv", idx); ok {
				f.UVIndex = entryFloat(ue, "index")
			}
		}

		out = append(out, f)
	}
	return out
}

// obsFloat reads one observation value as a float pointer, nil when absent.
func obsFloat(snap *weather.Snapshot, path ...string) *float64 {
	v, ok := snap.ObservationValue(path...)
	if !ok {
		return nil
	}
	f, ok := weather.Float(v)
	if !ok {
		return nil
	}
	return &f
}

// entryFloat reads one entry field as a float pointer, nil when absent.
func entryFloat(entry map[string]any, field string) *float64 {
	v, ok := fieldOf(entry, field)
	if !ok {
		return nil
	}
	f, ok := weather.Float(v)
	if !ok {
		return nil
	}
	return &f
}
