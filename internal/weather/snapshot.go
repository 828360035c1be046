package weather

import (
	"time"
)

// Snapshot is the unified result of one poll cycle. It is immutable once
// built: the coordinator swaps in a fresh snapshot on every successful cycle
// and readers never mutate it.
type Snapshot struct {
	// Observational holds the upstream "observational" object as decoded
	// JSON, navigated by key path.
	Observational map[string]any `json:"observational,omitempty"`

	// Forecast holds the location block and the per-feature forecast groups.
	Forecast Forecast `json:"forecast"`

	// Warnings holds the warning list, nil when warnings are not fetched.
	Warnings []Warning `json:"warnings,omitempty"`

	// FetchedAt is the UTC completion time of the poll cycle.
	FetchedAt time.Time `json:"fetchedAt"`
}

// Forecast groups the multi-day series keyed by feature type (weather,
// rainfall, uv, sunrisesunset, tides, wind).
type Forecast struct {
	Location  map[string]any            `json:"location,omitempty"`
	Forecasts map[string]*ForecastGroup `json:"forecasts,omitempty"`
}

// ForecastGroup is one feature type's day series.
type ForecastGroup struct {
	Days []ForecastDay `json:"days"`
}

// ForecastDay holds one day's entries. Entry shapes differ per feature
// type, so entries stay generic maps navigated by key.
type ForecastDay struct {
	DateTime string           `json:"dateTime"`
	Entries  []map[string]any `json:"entries"`
}

// Warning is one upstream weather warning.
type Warning struct {
	Code           string      `json:"code"`
	Name           string      `json:"name"`
	IssueDateTime  string      `json:"issueDateTime"`
	ExpireDateTime string      `json:"expireDateTime"`
	WarningType    WarningType `json:"warningType"`
}

// WarningType classifies a warning (storm, flood, fire and so on).
type WarningType struct {
	Classification string `json:"classification"`
	Name           string `json:"name"`
}

// Lookup walks nested decoded JSON by key. It returns ok=false when any key
// along the path is absent, nil, or the value at that point is not an
// object.
func Lookup(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// Float coerces a decoded JSON value to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// String coerces a decoded JSON value to string.
func String(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

// ObservationValue walks the observations object by key path.
func (s *Snapshot) ObservationValue(path ...string) (any, bool) {
	if s == nil {
		return nil, false
	}
	full := append([]string{"observations"}, path...)
	return Lookup(s.Observational, full...)
}

// ForecastDays returns the day series for a feature type, nil when absent.
func (s *Snapshot) ForecastDays(feature string) []ForecastDay {
	if s == nil || s.Forecast.Forecasts == nil {
		return nil
	}
	group := s.Forecast.Forecasts[feature]
	if group == nil {
		return nil
	}
	return group.Days
}

// DayEntry returns the first entry of day i for a feature type.
func (s *Snapshot) DayEntry(feature string, day int) (map[string]any, bool) {
	days := s.ForecastDays(feature)
	if day < 0 || day >= len(days) {
		return nil, false
	}
	if len(days[day].Entries) == 0 {
		return nil, false
	}
	return days[day].Entries[0], true
}

// Timezone returns the station's IANA timezone from the forecast location
// block, defaulting to UTC when absent or unknown.
func (s *Snapshot) Timezone() *time.Location {
	if s != nil {
		if v, ok := Lookup(s.Forecast.Location, "timezone"); ok {
			if name, ok := v.(string); ok {
				if loc, err := time.LoadLocation(name); err == nil {
					return loc
				}
			}
		}
	}
	return time.UTC
}
