package weather

import (
	"time"
)

// ConditionUnknown is returned for precis codes outside the table.
const ConditionUnknown = "unknown"

// conditionByPrecis maps upstream precis codes to the normalized condition
// vocabulary used by home automation frontends.
var conditionByPrecis = map[string]string{
	"fine":                        "sunny",
	"mostly-fine":                 "sunny",
	"high-cloud":                  "partlycloudy",
	"partly-cloudy":               "partlycloudy",
	"mostly-cloudy":               "cloudy",
	"cloudy":                      "cloudy",
	"overcast":                    "cloudy",
	"shower-or-two":               "rainy",
	"chance-shower-fine":          "rainy",
	"chance-shower-cloud":         "rainy",
	"drizzle":                     "rainy",
	"few-showers":                 "rainy",
	"showers-rain":                "rainy",
	"heavy-showers-rain":          "pouring",
	"chance-thunderstorm-fine":    "lightning",
	"chance-thunderstorm-cloud":   "lightning",
	"chance-thunderstorm-showers": "lightning-rainy",
	"thunderstorm":                "lightning-rainy",
	"chance-snow-fine":            "snowy",
	"chance-snow-cloud":           "snowy",
	"snow-and-rain":               "snowy-rainy",
	"light-snow":                  "snowy",
	"snow":                        "snowy",
	"heavy-snow":                  "snowy",
	"wind":                        "windy",
	"frost":                       "clear-night",
	"fog":                         "fog",
	"hail":                        "hail",
	"dust":                        "exceptional",
}

// Condition translates a precis code into a normalized condition string.
func Condition(precisCode string) string {
	if c, ok := conditionByPrecis[precisCode]; ok {
		return c
	}
	return ConditionUnknown
}

// UVAlert classifies a UV index on the standard Australian alert scale.
func UVAlert(index float64) string {
	switch {
	case index >= 11:
		return "Extreme"
	case index >= 8:
		return "Very High"
	case index >= 6:
		return "High"
	case index >= 3:
		return "Moderate"
	default:
		return "Low"
	}
}

// APITimeLayout is the plain datetime layout used across API responses.
const APITimeLayout = "2006-01-02 15:04:05"

// ParseTime parses an API datetime string, which comes either as a plain
// "2006-01-02 15:04:05" value or as RFC 3339. Plain values carry no zone
// and are interpreted in loc; warning expiry times are UTC, forecast times
// are station local.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, true
	}
	if loc == nil {
		loc = time.UTC
	}
	if ts, err := time.ParseInLocation(APITimeLayout, s, loc); err == nil {
		return ts, true
	}
	return time.Time{}, false
}
