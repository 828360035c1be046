package entity

import (
	"fmt"
	"time"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

// Sensor is a descriptor-driven read-only sensor.
type Sensor struct {
	stationID int
	desc      Descriptor
}

// NewSensor builds a sensor for one station from its descriptor.
func NewSensor(stationID int, desc Descriptor) *Sensor {
	return &Sensor{stationID: stationID, desc: desc}
}

func (s *Sensor) UniqueID() string { return fmt.Sprintf("%d_%s", s.stationID, s.desc.Key) }
func (s *Sensor) Key() string      { return s.desc.Key }
func (s *Sensor) Name() string     { return s.desc.Name }
func (s *Sensor) Kind() Kind       { return KindSensor }

func (s *Sensor) Meta() Meta {
	return Meta{
		Unit:        s.desc.Unit,
		Icon:        s.desc.Icon,
		DeviceClass: s.desc.DeviceClass,
		StateClass:  s.desc.StateClass,
	}
}

// State projects the descriptor against the snapshot. Nil means the value
// is missing upstream.
func (s *Sensor) State(snap *weather.Snapshot) any {
	return Project(snap, s.desc)
}

// Attributes is always nil for plain sensors.
func (s *Sensor) Attributes(*weather.Snapshot) map[string]any { return nil }

// Project evaluates one descriptor against a snapshot. Missing data at any
// step yields nil; projections never panic on partial payloads.
func Project(snap *weather.Snapshot, d Descriptor) any {
	return ProjectAt(snap, d, time.Now())
}

// ProjectAt is Project with an explicit reference time for the next
// occurrence search.
func ProjectAt(snap *weather.Snapshot, d Descriptor, now time.Time) any {
	if snap == nil {
		return nil
	}

	var raw any
	var ok bool

	switch d.Projection {
	case ProjectObservation:
		raw, ok = snap.ObservationValue(d.Path...)
	case ProjectDayEntry:
		raw, ok = projectDayEntry(snap, d)
	case ProjectNextOccurrence:
		raw, ok = projectNextOccurrence(snap, d, now)
	}
	if !ok {
		return nil
	}
	return applyTransform(raw, d.Transform, snap)
}

func projectDayEntry(snap *weather.Snapshot, d Descriptor) (any, bool) {
	entry, ok := snap.DayEntry(d.Feature, d.Day)
	if !ok {
		return nil, false
	}
	return fieldOf(entry, d.Field)
}

func projectNextOccurrence(snap *weather.Snapshot, d Descriptor, now time.Time) (any, bool) {
	tz := snap.Timezone()

	var first map[string]any
	for _, day := range snap.ForecastDays(d.Feature) {
		for _, entry := range day.Entries {
			if d.EntryType != "" {
				if et, _ := entry["type"].(string); et != d.EntryType {
					continue
				}
			}
			if first == nil {
				first = entry
			}

			raw, _ := entry["dateTime"].(string)
			ts, ok := weather.ParseTime(raw, tz)
			if !ok {
				continue
			}
			if ts.After(now) {
				return fieldOf(entry, d.Field)
			}
		}
	}

	if d.Fallback && first != nil {
		return fieldOf(first, d.Field)
	}
	return nil, false
}

// fieldOf reads one key from an entry; an empty field yields the whole
// entry.
func fieldOf(entry map[string]any, field string) (any, bool) {
	if field == "" {
		return entry, true
	}
	v, ok := entry[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func applyTransform(raw any, t Transform, snap *weather.Snapshot) any {
	switch t {
	case TransformCondition:
		code, _ := weather.String(raw)
		return weather.Condition(code)

	case TransformUVAlert:
		index, ok := weather.Float(raw)
		if !ok {
			return nil
		}
		return weather.UVAlert(index)

	case TransformRainRange:
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil
		}
		amount, ok := rainRange(entry)
		if !ok {
			return nil
		}
		return amount

	case TransformTime:
		s, _ := weather.String(raw)
		ts, ok := weather.ParseTime(s, snap.Timezone())
		if !ok {
			return nil
		}
		return ts.UTC().Format(time.RFC3339)

	default:
		return raw
	}
}

// rainRange reduces a rainfall entry's range to one amount: the midpoint
// when both bounds are present, the upper bound when the range is open
// below.
func rainRange(entry map[string]any) (float64, bool) {
	start, hasStart := weather.Float(entry["startRange"])
	end, hasEnd := weather.Float(entry["endRange"])
	switch {
	case hasStart && hasEnd:
		return (start + end) / 2, true
	case hasEnd:
		return end, true
	default:
		return 0, false
	}
}
