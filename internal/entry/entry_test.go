package entry

import (
	"reflect"
	"testing"
	"time"
)

func TestForecastTypes(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "weather is always requested",
			opts: Options{},
			want: []string{"weather"},
		},
		{
			name: "single toggle",
			opts: Options{UV: true},
			want: []string{"weather", "uv"},
		},
		{
			name: "all toggles in fixed order",
			opts: Options{Rainfall: true, UV: true, SunMoon: true, Tides: true, Wind: true},
			want: []string{"weather", "rainfall", "uv", "sunrisesunset", "tides", "wind"},
		},
		{
			name: "warnings never join the forecast list",
			opts: Options{Warnings: true, Tides: true},
			want: []string{"weather", "tides"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.ForecastTypes()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ForecastTypes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryOptionsRoundTrip(t *testing.T) {
	e := New("key", 14, "Sydney", DefaultOptions())

	if e.ID == "" {
		t.Error("expected a generated entry id")
	}
	if !e.Options().Observational {
		t.Error("default options should enable observational data")
	}

	next := e.Options()
	next.Tides = true
	next.UpdateInterval = 5 * time.Minute
	e.SetOptions(next)

	got := e.Options()
	if !got.Tides {
		t.Error("tides toggle was not applied")
	}
	if got.UpdateInterval != 5*time.Minute {
		t.Errorf("update interval = %v, want 5m", got.UpdateInterval)
	}
}

func TestEntryIDsAreUnique(t *testing.T) {
	a := New("key", 14, "Sydney", DefaultOptions())
	b := New("key", 15, "Melbourne", DefaultOptions())

	if a.ID == b.ID {
		t.Error("two entries received the same id")
	}
}
