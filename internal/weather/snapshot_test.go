package weather

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

const observationalFixture = `{
	"observations": {
		"temperature": {"temperature": 21.5, "apparentTemperature": 19.8},
		"humidity": {"percentage": 65},
		"wind": {"speed": 14.8, "gustSpeed": 22.2, "direction": 247.5, "directionText": "WSW"},
		"rainfall": {"lastHourAmount": 0, "todayAmount": 1.2, "since9AMAmount": 1.2},
		"cloud": {"oktas": 4}
	}
}`

func decodeObservational(t *testing.T) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal([]byte(observationalFixture), &m); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return m
}

func TestLookup(t *testing.T) {
	m := decodeObservational(t)

	tests := []struct {
		name   string
		path   []string
		want   any
		wantOK bool
	}{
		{
			name:   "nested value",
			path:   []string{"observations", "temperature", "temperature"},
			want:   21.5,
			wantOK: true,
		},
		{
			name:   "missing leaf",
			path:   []string{"observations", "temperature", "trend"},
			wantOK: false,
		},
		{
			name:   "missing branch",
			path:   []string{"observations", "pressure", "pressure"},
			wantOK: false,
		},
		{
			name:   "descends through non-object",
			path:   []string{"observations", "humidity", "percentage", "deeper"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Lookup(m, tt.path...)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%v) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if tt.wantOK && got != tt.want {
				t.Errorf("Lookup(%v) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupNullValue(t *testing.T) {
	var m map[string]any
	if err := json.Unmarshal([]byte(`{"rainfall": {"startRange": null}}`), &m); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}

	if _, ok := Lookup(m, "rainfall", "startRange"); ok {
		t.Error("expected ok=false for JSON null value")
	}
}

func TestCoercions(t *testing.T) {
	if f, ok := Float(21.5); !ok || f != 21.5 {
		t.Errorf("Float(21.5) = %v, %v", f, ok)
	}
	if f, ok := Float(4); !ok || f != 4 {
		t.Errorf("Float(4) = %v, %v", f, ok)
	}
	if _, ok := Float("21.5"); ok {
		t.Error("Float should reject strings")
	}

	if s, ok := String("WSW"); !ok || s != "WSW" {
		t.Errorf("String(WSW) = %v, %v", s, ok)
	}
	if _, ok := String(21.5); ok {
		t.Error("String should reject numbers")
	}
	if _, ok := String(nil); ok {
		t.Error("String should reject nil")
	}
}

func TestObservationValue(t *testing.T) {
	snap := &Snapshot{Observational: decodeObservational(t)}

	v, ok := snap.ObservationValue("wind", "directionText")
	if !ok {
		t.Fatal("expected wind direction text to resolve")
	}
	if v != "WSW" {
		t.Errorf("got %v, want WSW", v)
	}

	if _, ok := snap.ObservationValue("pressure", "pressure"); ok {
		t.Error("expected missing pressure group to return ok=false")
	}

	var nilSnap *Snapshot
	if _, ok := nilSnap.ObservationValue("temperature", "temperature"); ok {
		t.Error("expected nil snapshot to return ok=false")
	}
}

func TestSnapshotMarshalDeterministic(t *testing.T) {
	build := func() *Snapshot {
		return &Snapshot{
			Observational: decodeObservational(t),
			FetchedAt:     time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC),
		}
	}

	a, err := json.Marshal(build())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(build())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Error("snapshots built from the same payload marshaled differently")
	}
}

func TestForecastDays(t *testing.T) {
	snap := &Snapshot{
		Forecast: Forecast{
			Forecasts: map[string]*ForecastGroup{
				"weather": {Days: []ForecastDay{{DateTime: "2024-01-20 00:00:00"}}},
			},
		},
	}

	if got := len(snap.ForecastDays("weather")); got != 1 {
		t.Errorf("got %d days, want 1", got)
	}
	if snap.ForecastDays("tides") != nil {
		t.Error("expected nil for missing feature type")
	}

	var nilSnap *Snapshot
	if nilSnap.ForecastDays("weather") != nil {
		t.Error("expected nil for nil snapshot")
	}
}

func TestDayEntry(t *testing.T) {
	snap := &Snapshot{
		Forecast: Forecast{
			Forecasts: map[string]*ForecastGroup{
				"uv": {Days: []ForecastDay{
					{Entries: []map[string]any{{"index": 7.0}}},
					{Entries: nil},
				}},
			},
		},
	}

	entry, ok := snap.DayEntry("uv", 0)
	if !ok {
		t.Fatal("expected day 0 entry")
	}
	if entry["index"] != 7.0 {
		t.Errorf("got index %v, want 7", entry["index"])
	}

	if _, ok := snap.DayEntry("uv", 1); ok {
		t.Error("expected ok=false for day with no entries")
	}
	if _, ok := snap.DayEntry("uv", 5); ok {
		t.Error("expected ok=false for day out of range")
	}
}

func TestTimezone(t *testing.T) {
	snap := &Snapshot{
		Forecast: Forecast{
			Location: map[string]any{"timezone": "Australia/Sydney"},
		},
	}

	if got := snap.Timezone().String(); got != "Australia/Sydney" {
		t.Errorf("got %q, want Australia/Sydney", got)
	}

	snap.Forecast.Location = map[string]any{"timezone": "Atlantis/Nowhere"}
	if got := snap.Timezone(); got != time.UTC {
		t.Errorf("got %v for unknown zone, want UTC", got)
	}

	var nilSnap *Snapshot
	if got := nilSnap.Timezone(); got != time.UTC {
		t.Errorf("got %v for nil snapshot, want UTC", got)
	}
}
