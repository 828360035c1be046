package entity

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/i474232898/willyweather-bridge/internal/entry"
)

func keysOf(entities []Entity) map[string]bool {
	keys := make(map[string]bool, len(entities))
	for _, e := range entities {
		keys[e.Key()] = true
	}
	return keys
}

func TestBuildDefaultOptions(t *testing.T) {
	e := entry.New("key", 4988, "Bondi Beach", entry.DefaultOptions())
	entities := Build(e)

	keys := keysOf(entities)

	if !keys["temperature"] {
		t.Error("observational sensors should be built by default")
	}
	if !keys["weather"] {
		t.Error("the weather entity is always built")
	}
	if keys["next_high_tide"] || keys["uv_index"] || keys["storm_warning"] {
		t.Error("toggled-off feature sensors must not be built")
	}

	// Five forecast days of summary, condition, max and min.
	for day := 0; day < 5; day++ {
		for _, base := range []string{"forecast_summary", "forecast_condition", "forecast_temp_max", "forecast_temp_min"} {
			key := fmt.Sprintf("%s_%d", base, day)
			if !keys[key] {
				t.Errorf("missing daily sensor %s", key)
			}
		}
	}
	if keys["forecast_rain_0"] || keys["forecast_uv_index_0"] {
		t.Error("rainfall and uv daily sensors need their toggles")
	}

	want := len(ObservationalSensors) + 5*4 + 1
	if len(entities) != want {
		t.Errorf("built %d entities, want %d", len(entities), want)
	}
}

func TestBuildAllToggles(t *testing.T) {
	opts := entry.DefaultOptions()
	opts.Warnings = true
	opts.Rainfall = true
	opts.UV = true
	opts.SunMoon = true
	opts.Tides = true
	opts.Wind = true
	opts.ForecastDays = 2

	e := entry.New("key", 4988, "Bondi Beach", opts)
	entities := Build(e)

	keys := keysOf(entities)
	for _, key := range []string{
		"sunrise", "moon_phase",
		"next_high_tide", "next_low_tide_height",
		"uv_index", "uv_alert",
		"wind_speed_forecast",
		"storm_warning", "flood_warning", "fire_warning", "heat_warning", "wind_warning",
		"forecast_rain_0", "forecast_rain_1", "forecast_uv_index_1",
		"weather",
	} {
		if !keys[key] {
			t.Errorf("missing entity %s", key)
		}
	}

	want := len(ObservationalSensors) + len(SunMoonSensors) + len(TideSensors) +
		len(UVSensors) + len(WindForecastSensors) +
		2*len(DailySensorTemplates) + len(WarningSensors) + 1
	if len(entities) != want {
		t.Errorf("built %d entities, want %d", len(entities), want)
	}
}

func TestBuildUniqueIDs(t *testing.T) {
	opts := entry.DefaultOptions()
	opts.Warnings = true
	opts.Rainfall = true
	opts.UV = true
	opts.SunMoon = true
	opts.Tides = true
	opts.Wind = true

	e := entry.New("key", 4988, "Bondi Beach", opts)
	entities := Build(e)

	seen := make(map[string]bool)
	for _, ent := range entities {
		id := ent.UniqueID()
		if seen[id] {
			t.Errorf("duplicate unique id %s", id)
		}
		seen[id] = true

		if !strings.HasPrefix(id, "4988_") {
			t.Errorf("unique id %s is not scoped to the station", id)
		}
	}
}

func TestBuildStateIsPure(t *testing.T) {
	e := entry.New("key", 4988, "Bondi Beach", entry.DefaultOptions())
	entities := Build(e)
	snap := testSnapshot(t)

	for _, ent := range entities {
		first := ent.State(snap)
		second := ent.State(snap)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("entity %s state is not stable across reads", ent.Key())
		}
	}
}
