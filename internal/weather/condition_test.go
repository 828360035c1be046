package weather

import (
	"testing"
	"time"
)

func TestCondition(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"fine", "sunny"},
		{"partly-cloudy", "partlycloudy"},
		{"heavy-showers-rain", "pouring"},
		{"chance-thunderstorm-showers", "lightning-rainy"},
		{"frost", "clear-night"},
		{"dust", "exceptional"},
		{"volcanic-ash", ConditionUnknown},
		{"", ConditionUnknown},
	}

	for _, tt := range tests {
		if got := Condition(tt.code); got != tt.want {
			t.Errorf("Condition(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestUVAlert(t *testing.T) {
	tests := []struct {
		index float64
		want  string
	}{
		{13, "Extreme"},
		{11, "Extreme"},
		{10.9, "Very High"},
		{8, "Very High"},
		{6, "High"},
		{5.5, "Moderate"},
		{3, "Moderate"},
		{2.9, "Low"},
		{0, "Low"},
	}

	for _, tt := range tests {
		if got := UVAlert(tt.index); got != tt.want {
			t.Errorf("UVAlert(%v) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestParseTime(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Fatalf("failed to load zone: %v", err)
	}

	t.Run("plain layout uses given location", func(t *testing.T) {
		ts, ok := ParseTime("2024-01-20 06:03:00", sydney)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		want := time.Date(2024, 1, 20, 6, 3, 0, 0, sydney)
		if !ts.Equal(want) {
			t.Errorf("got %v, want %v", ts, want)
		}
	})

	t.Run("rfc3339 keeps its own offset", func(t *testing.T) {
		ts, ok := ParseTime("2024-01-20T09:00:00Z", sydney)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		want := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
		if !ts.Equal(want) {
			t.Errorf("got %v, want %v", ts, want)
		}
	})

	t.Run("nil location falls back to UTC", func(t *testing.T) {
		ts, ok := ParseTime("2024-01-20 09:00:00", nil)
		if !ok {
			t.Fatal("expected parse to succeed")
		}
		want := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
		if !ts.Equal(want) {
			t.Errorf("got %v, want %v", ts, want)
		}
	})

	t.Run("garbage fails", func(t *testing.T) {
		if _, ok := ParseTime("not a time", time.UTC); ok {
			t.Error("expected parse to fail")
		}
		if _, ok := ParseTime("", time.UTC); ok {
			t.Error("expected empty string to fail")
		}
	})
}
