package mqtt

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/i474232898/willyweather-bridge/internal/config"
	"github.com/i474232898/willyweather-bridge/internal/entity"
	"github.com/i474232898/willyweather-bridge/internal/entry"
)

// discoveryPayload is the Home Assistant discovery config announced per
// entity.
type discoveryPayload struct {
	Name                string          `json:"name"`
	UniqueID            string          `json:"unique_id"`
	StateTopic          string          `json:"state_topic"`
	JSONAttributesTopic string          `json:"json_attributes_topic,omitempty"`
	DeviceClass         string          `json:"device_class,omitempty"`
	StateClass          string          `json:"state_class,omitempty"`
	UnitOfMeasurement   string          `json:"unit_of_measurement,omitempty"`
	Icon                string          `json:"icon,omitempty"`
	Availability        []availability  `json:"availability"`
	AvailabilityMode    string          `json:"availability_mode"`
	Device              discoveryDevice `json:"device"`
}

type availability struct {
	Topic string `json:"topic"`
}

// discoveryDevice groups an entry's entities under one device.
type discoveryDevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer"`
	Model        string   `json:"model"`
}

// component maps an entity kind onto its discovery component. The weather
// summary has no discovery component of its own and rides as a sensor with
// its data in the attributes topic.
func component(kind entity.Kind) string {
	if kind == entity.KindBinarySensor {
		return "binary_sensor"
	}
	return "sensor"
}

func buildDiscovery(cfg config.MQTTConfig, e *entry.Entry, ent entity.Entity) discoveryPayload {
	meta := ent.Meta()

	payload := discoveryPayload{
		Name:              ent.Name(),
		UniqueID:          fmt.Sprintf("willyweather_%s", ent.UniqueID()),
		StateTopic:        stateTopic(cfg.TopicPrefix, e.StationID, ent.Key()),
		DeviceClass:       meta.DeviceClass,
		StateClass:        meta.StateClass,
		UnitOfMeasurement: meta.Unit,
		Icon:              meta.Icon,
		Availability: []availability{
			{Topic: bridgeAvailabilityTopic(cfg.TopicPrefix)},
			{Topic: entryAvailabilityTopic(cfg.TopicPrefix, e.StationID)},
		},
		AvailabilityMode: "all",
		Device: discoveryDevice{
			Identifiers:  []string{fmt.Sprintf("willyweather_%d", e.StationID)},
			Name:         e.StationName,
			Manufacturer: "WillyWeather",
			Model:        "weather station",
		},
	}

	if ent.Kind() != entity.KindSensor {
		payload.JSONAttributesTopic = attributesTopic(cfg.TopicPrefix, e.StationID, ent.Key())
	}
	return payload
}

func stateTopic(prefix string, stationID int, key string) string {
	return fmt.Sprintf("%s/%d/%s/state", prefix, stationID, key)
}

func attributesTopic(prefix string, stationID int, key string) string {
	return fmt.Sprintf("%s/%d/%s/attributes", prefix, stationID, key)
}

func entryAvailabilityTopic(prefix string, stationID int) string {
	return fmt.Sprintf("%s/%d/availability", prefix, stationID)
}

func bridgeAvailabilityTopic(prefix string) string {
	return fmt.Sprintf("%s/bridge/availability", prefix)
}

func discoveryTopic(discoveryPrefix string, stationID int, ent entity.Entity) string {
	return fmt.Sprintf("%s/%s/willyweather_%d/%s/config", discoveryPrefix, component(ent.Kind()), stationID, ent.Key())
}

// stateString renders a projected value for the state topic. Missing
// values become empty payloads, which consumers read as unknown.
func stateString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "ON"
		}
		return "OFF"
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(body)
	}
}
