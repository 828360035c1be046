package entity

import (
	"fmt"

	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/weather"
)

// Entity is a read-only projection over the snapshot. State is a pure
// function of the snapshot passed in; entities hold no mutable data, so a
// set can be rebuilt from the descriptor tables at any time.
type Entity interface {
	UniqueID() string
	Key() string
	Name() string
	Kind() Kind
	Meta() Meta

	// State returns the projected value, nil when missing upstream.
	State(snap *weather.Snapshot) any

	// Attributes returns extra state, nil for entities without any.
	Attributes(snap *weather.Snapshot) map[string]any
}

// Build instantiates the entity set for an entry from the descriptor
// tables, honoring the entry's feature toggles.
func Build(e *entry.Entry) []Entity {
	opts := e.Options()
	var entities []Entity

	addSensors := func(descs []Descriptor) {
		for _, d := range descs {
			entities = append(entities, NewSensor(e.StationID, d))
		}
	}

	if opts.Observational {
		addSensors(ObservationalSensors)
	}
	if opts.SunMoon {
		addSensors(SunMoonSensors)
	}
	if opts.Tides {
		addSensors(TideSensors)
	}
	if opts.UV {
		addSensors(UVSensors)
	}
	if opts.Wind {
		addSensors(WindForecastSensors)
	}

	for day := 0; day < opts.ForecastDays; day++ {
		for _, tpl := range DailySensorTemplates {
			switch tpl.Feature {
			case "rainfall":
				if !opts.Rainfall {
					continue
				}
			case "uv":
				if !opts.UV {
					continue
				}
			}

			d := tpl
			d.Day = day
			d.Key = fmt.Sprintf("%s_%d", tpl.Key, day)
			d.Name = fmt.Sprintf("%s %d", tpl.Name, day)
			entities = append(entities, NewSensor(e.StationID, d))
		}
	}

	if opts.Warnings {
		for _, d := range WarningSensors {
			entities = append(entities, NewBinarySensor(e.StationID, d))
		}
	}

	entities = append(entities, NewWeather(e.StationID, e.StationName, opts.Rainfall, opts.UV))
	return entities
}
