package entity

// Kind distinguishes the entity classes exposed to consumers.
type Kind string

const (
	KindSensor       Kind = "sensor"
	KindBinarySensor Kind = "binary_sensor"
	KindWeather      Kind = "weather"
)

// Meta carries the display metadata shared by all entity kinds.
type Meta struct {
	Unit        string `json:"unit,omitempty"`
	Icon        string `json:"icon,omitempty"`
	DeviceClass string `json:"deviceClass,omitempty"`
	StateClass  string `json:"stateClass,omitempty"`
}

// Projection selects how a descriptor reads the snapshot.
type Projection int

const (
	// ProjectObservation walks Path inside the observations object.
	ProjectObservation Projection = iota

	// ProjectDayEntry reads Field from the first entry of Day in the
	// Feature forecast group.
	ProjectDayEntry

	// ProjectNextOccurrence scans the Feature entries across all days for
	// the first entry after now in station local time, optionally filtered
	// by EntryType, and reads Field from it.
	ProjectNextOccurrence
)

// Transform optionally reshapes the projected value.
type Transform int

const (
	TransformNone Transform = iota

	// TransformCondition maps a precis code to a condition string.
	TransformCondition

	// TransformUVAlert maps a UV index to its alert classification.
	TransformUVAlert

	// TransformRainRange reduces a rainfall entry's startRange/endRange
	// pair to a single amount.
	TransformRainRange

	// TransformTime parses an API datetime and renders it as RFC 3339 UTC.
	TransformTime
)

// Descriptor statically describes one sensor: identity, display metadata,
// and how to project its value out of the snapshot.
type Descriptor struct {
	Key  string
	Name string

	Unit        string
	Icon        string
	DeviceClass string
	StateClass  string

	Projection Projection
	Path       []string // observation key path (ProjectObservation)
	Feature    string   // forecast group (ProjectDayEntry, ProjectNextOccurrence)
	Day        int      // day index (ProjectDayEntry)
	Field      string   // entry key; empty yields the whole entry
	EntryType  string   // entry "type" filter (ProjectNextOccurrence)
	Fallback   bool     // fall back to the first entry when nothing is ahead
	Transform  Transform
}

// ObservationalSensors mirror the upstream current conditions block.
var ObservationalSensors = []Descriptor{
	{Key: "temperature", Name: "Temperature", Unit: "°C", Icon: "mdi:thermometer", DeviceClass: "temperature", StateClass: "measurement", Path: []string{"temperature", "temperature"}},
	{Key: "apparent_temperature", Name: "Apparent Temperature", Unit: "°C", Icon: "mdi:thermometer", DeviceClass: "temperature", StateClass: "measurement", Path: []string{"temperature", "apparentTemperature"}},
	{Key: "humidity", Name: "Humidity", Unit: "%", Icon: "mdi:water-percent", DeviceClass: "humidity", StateClass: "measurement", Path: []string{"humidity", "percentage"}},
	{Key: "dewpoint", Name: "Dew Point", Unit: "°C", Icon: "mdi:thermometer", DeviceClass: "temperature", StateClass: "measurement", Path: []string{"dewPoint", "temperature"}},
	{Key: "pressure", Name: "Pressure", Unit: "hPa", Icon: "mdi:gauge", DeviceClass: "pressure", StateClass: "measurement", Path: []string{"pressure", "pressure"}},
	{Key: "wind_speed", Name: "Wind Speed", Unit: "km/h", Icon: "mdi:weather-windy", DeviceClass: "wind_speed", StateClass: "measurement", Path: []string{"wind", "speed"}},
	{Key: "wind_gust", Name: "Wind Gust", Unit: "km/h", Icon: "mdi:weather-windy-variant", DeviceClass: "wind_speed", StateClass: "measurement", Path: []string{"wind", "gustSpeed"}},
	{Key: "wind_direction", Name: "Wind Direction", Unit: "°", Icon: "mdi:compass", StateClass: "measurement", Path: []string{"wind", "direction"}},
	{Key: "wind_direction_text", Name: "Wind Direction Text", Icon: "mdi:compass", Path: []string{"wind", "directionText"}},
	{Key: "cloud", Name: "Cloud Cover", Unit: "oktas", Icon: "mdi:cloud", StateClass: "measurement", Path: []string{"cloud", "oktas"}},
	{Key: "rain_last_hour", Name: "Rain Last Hour", Unit: "mm", Icon: "mdi:weather-rainy", DeviceClass: "precipitation", StateClass: "measurement", Path: []string{"rainfall", "lastHourAmount"}},
	{Key: "rain_today", Name: "Rain Today", Unit: "mm", Icon: "mdi:weather-rainy", DeviceClass: "precipitation", StateClass: "total_increasing", Path: []string{"rainfall", "todayAmount"}},
	{Key: "rain_since_9am", Name: "Rain Since 9am", Unit: "mm", Icon: "mdi:weather-rainy", DeviceClass: "precipitation", StateClass: "total_increasing", Path: []string{"rainfall", "since9AMAmount"}},
}

// SunMoonSensors read today's sunrisesunset entry.
var SunMoonSensors = []Descriptor{
	{Key: "sunrise", Name: "Sunrise", Icon: "mdi:weather-sunset-up", DeviceClass: "timestamp", Projection: ProjectDayEntry, Feature: "sunrisesunset", Field: "firstLightDateTime", Transform: TransformTime},
	{Key: "sunset", Name: "Sunset", Icon: "mdi:weather-sunset-down", DeviceClass: "timestamp", Projection: ProjectDayEntry, Feature: "sunrisesunset", Field: "lastLightDateTime", Transform: TransformTime},
	{Key: "moonrise", Name: "Moonrise", Icon: "mdi:moon-waxing-crescent", DeviceClass: "timestamp", Projection: ProjectDayEntry, Feature: "sunrisesunset", Field: "moonrise", Transform: TransformTime},
	{Key: "moonset", Name: "Moonset", Icon: "mdi:moon-waning-crescent", DeviceClass: "timestamp", Projection: ProjectDayEntry, Feature: "sunrisesunset", Field: "moonset", Transform: TransformTime},
	{Key: "moon_phase", Name: "Moon Phase", Icon: "mdi:moon-full", Projection: ProjectDayEntry, Feature: "sunrisesunset", Field: "moonPhaseDescription"},
}

// TideSensors search for the next high and low tide in station local time.
var TideSensors = []Descriptor{
	{Key: "next_high_tide", Name: "Next High Tide", Icon: "mdi:waves-arrow-up", DeviceClass: "timestamp", Projection: ProjectNextOccurrence, Feature: "tides", EntryType: "high", Field: "dateTime", Transform: TransformTime},
	{Key: "next_low_tide", Name: "Next Low Tide", Icon: "mdi:waves-arrow-down", DeviceClass: "timestamp", Projection: ProjectNextOccurrence, Feature: "tides", EntryType: "low", Field: "dateTime", Transform: TransformTime},
	{Key: "next_high_tide_height", Name: "Next High Tide Height", Unit: "m", Icon: "mdi:waves-arrow-up", Projection: ProjectNextOccurrence, Feature: "tides", EntryType: "high", Field: "height"},
	{Key: "next_low_tide_height", Name: "Next Low Tide Height", Unit: "m", Icon: "mdi:waves-arrow-down", Projection: ProjectNextOccurrence, Feature: "tides", EntryType: "low", Field: "height"},
}

// UVSensors read today's uv entry.
var UVSensors = []Descriptor{
	{Key: "uv_index", Name: "UV Index", Icon: "mdi:weather-sunny-alert", StateClass: "measurement", Projection: ProjectDayEntry, Feature: "uv", Field: "index"},
	{Key: "uv_alert", Name: "UV Alert", Icon: "mdi:weather-sunny-alert", Projection: ProjectDayEntry, Feature: "uv", Field: "index", Transform: TransformUVAlert},
}

// WindForecastSensors read the next wind forecast entry. Wind entries keep
// their last value when every entry is in the past.
var WindForecastSensors = []Descriptor{
	{Key: "wind_speed_forecast", Name: "Wind Speed Forecast", Unit: "km/h", Icon: "mdi:weather-windy", DeviceClass: "wind_speed", Projection: ProjectNextOccurrence, Feature: "wind", Field: "speed", Fallback: true},
	{Key: "wind_direction_forecast", Name: "Wind Direction Forecast", Unit: "°", Icon: "mdi:compass", Projection: ProjectNextOccurrence, Feature: "wind", Field: "direction", Fallback: true},
}

// DailySensorTemplates expand into one sensor per forecast day. The
// rainfall and uv rows are skipped when their feature toggle is off.
var DailySensorTemplates = []Descriptor{
	{Key: "forecast_summary", Name: "Summary", Projection: ProjectDayEntry, Feature: "weather", Field: "precis"},
	{Key: "forecast_condition", Name: "Condition", Projection: ProjectDayEntry, Feature: "weather", Field: "precisCode", Transform: TransformCondition},
	{Key: "forecast_temp_max", Name: "Max Temperature", Unit: "°C", Icon: "mdi:thermometer", DeviceClass: "temperature", Projection: ProjectDayEntry, Feature: "weather", Field: "max"},
	{Key: "forecast_temp_min", Name: "Min Temperature", Unit: "°C", Icon: "mdi:thermometer", DeviceClass: "temperature", Projection: ProjectDayEntry, Feature: "weather", Field: "min"},
	{Key: "forecast_rain", Name: "Rain", Unit: "mm", Icon: "mdi:weather-rainy", DeviceClass: "precipitation", Projection: ProjectDayEntry, Feature: "rainfall", Transform: TransformRainRange},
	{Key: "forecast_rain_probability", Name: "Rain Probability", Unit: "%", Icon: "mdi:weather-rainy", Projection: ProjectDayEntry, Feature: "rainfall", Field: "probability"},
	{Key: "forecast_uv_index", Name: "UV Index Forecast", Icon: "mdi:weather-sunny-alert", Projection: ProjectDayEntry, Feature: "uv", Field: "index"},
}

// BinaryDescriptor describes one warning binary sensor.
type BinaryDescriptor struct {
	Key         string
	Name        string
	Icon        string
	DeviceClass string
}

// WarningSensors are the warning binary sensors created when warnings are
// enabled.
var WarningSensors = []BinaryDescriptor{
	{Key: "storm_warning", Name: "Storm Warning", Icon: "mdi:weather-lightning-rainy", DeviceClass: "safety"},
	{Key: "flood_warning", Name: "Flood Warning", Icon: "mdi:water-alert", DeviceClass: "safety"},
	{Key: "fire_warning", Name: "Fire Warning", Icon: "mdi:fire-alert", DeviceClass: "safety"},
	{Key: "heat_warning", Name: "Heat Warning", Icon: "mdi:thermometer-alert", DeviceClass: "safety"},
	{Key: "wind_warning", Name: "Wind Warning", Icon: "mdi:weather-windy-variant", DeviceClass: "safety"},
}

// WarningClassifications maps warning sensor keys to upstream warning
// classifications. The table covers more keys than WarningSensors
// instantiates; the extras are kept so adding a sensor is a one line change
// here and in WarningSensors.
var WarningClassifications = map[string]string{
	"storm_warning":        "storm",
	"flood_warning":        "flood",
	"fire_warning":         "fire",
	"heat_warning":         "heat",
	"wind_warning":         "strong-wind",
	"weather_warning":      "storm",
	"strong_wind_warning":  "strong-wind",
	"thunderstorm_warning": "storm",
	"frost_warning":        "frost",
	"rain_warning":         "cold-rain",
	"snow_warning":         "snow",
	"hail_warning":         "storm",
	"cyclone_warning":      "hurricane",
	"tsunami_warning":      "tsunami",
	"fog_warning":          "fog",
}
