package entity

import (
	"fmt"
	"time"

	"github.com/i474232898/willyweather-bridge/internal/weather"
)

// BinarySensor reports whether any unexpired warning matches its
// classification.
type BinarySensor struct {
	stationID int
	desc      BinaryDescriptor
}

// NewBinarySensor builds a warning binary sensor for one station.
func NewBinarySensor(stationID int, desc BinaryDescriptor) *BinarySensor {
	return &BinarySensor{stationID: stationID, desc: desc}
}

func (b *BinarySensor) UniqueID() string { return fmt.Sprintf("%d_%s", b.stationID, b.desc.Key) }
func (b *BinarySensor) Key() string      { return b.desc.Key }
func (b *BinarySensor) Name() string     { return b.desc.Name }
func (b *BinarySensor) Kind() Kind       { return KindBinarySensor }

func (b *BinarySensor) Meta() Meta {
	return Meta{Icon: b.desc.Icon, DeviceClass: b.desc.DeviceClass}
}

// ActiveAt returns the unexpired warnings of this sensor's classification
// at the reference time. Warning expiry times are UTC.
func (b *BinarySensor) ActiveAt(snap *weather.Snapshot, now time.Time) []weather.Warning {
	if snap == nil {
		return nil
	}
	classification := WarningClassifications[b.desc.Key]
	if classification == "" {
		return nil
	}

	var active []weather.Warning
	for _, w := range snap.Warnings {
		if w.WarningType.Classification != classification {
			continue
		}
		expire, ok := weather.ParseTime(w.ExpireDateTime, time.UTC)
		if !ok {
			continue
		}
		if expire.After(now) {
			active = append(active, w)
		}
	}
	return active
}

// State is true while a matching warning is active, nil before the first
// snapshot.
func (b *BinarySensor) State(snap *weather.Snapshot) any {
	if snap == nil {
		return nil
	}
	return len(b.ActiveAt(snap, time.Now())) > 0
}

// Attributes lists the active warnings: count, first code and name, and
// the full list.
func (b *BinarySensor) Attributes(snap *weather.Snapshot) map[string]any {
	attrs := map[string]any{
		"warning_count": 0,
		"code":          nil,
		"name":          nil,
		"warnings":      []map[string]any{},
	}

	active := b.ActiveAt(snap, time.Now())
	if len(active) == 0 {
		return attrs
	}

	list := make([]map[string]any, 0, len(active))
	for _, w := range active {
		list = append(list, map[string]any{
			"code":         w.Code,
			"name":         w.Name,
			"issue_time":   w.IssueDateTime,
			"expire_time":  w.ExpireDateTime,
			"warning_type": w.WarningType.Name,
		})
	}

	attrs["warning_count"] = len(active)
	attrs["code"] = active[0].Code
	attrs["name"] = active[0].Name
	attrs["warnings"] = list
	return attrs
}
