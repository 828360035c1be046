package config

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/willyweather"
)

// AppConfig is the process configuration assembled from the environment.
type AppConfig struct {
	// APIKey is the WillyWeather API key shared by every station entry.
	APIKey string

	// GeocoderAPIKey enables address based station setup when set.
	GeocoderAPIKey string

	// Stations lists the station targets configured at boot.
	Stations []willyweather.Target

	// EntryOptions seeds every entry created at boot. Per entry changes go
	// through the options endpoint afterwards.
	EntryOptions entry.Options

	// HTTPTimeout bounds each upstream API call.
	HTTPTimeout time.Duration

	// StoreMaxHistory and StoreMaxAge cap the per entry snapshot history.
	StoreMaxHistory int
	StoreMaxAge     time.Duration

	Port string

	MQTT MQTTConfig

	AppEnv   string
	LogLevel slog.Level
}

// MQTTConfig carries the optional broker settings. An empty broker host
// disables publishing entirely.
type MQTTConfig struct {
	Broker          string
	Port            int
	Username        string
	Password        string
	ClientID        string
	TopicPrefix     string
	DiscoveryPrefix string
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// Load reads configuration from the environment, with .env as a fallback
// for local development.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: no .env file found, using environment variables")
	}

	cfg := &AppConfig{
		Port:            getenvDefault("PORT", "8080"),
		HTTPTimeout:     time.Duration(getenvInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
		StoreMaxHistory: getenvInt("STORE_MAX_HISTORY", 288),
		StoreMaxAge:     time.Duration(getenvInt("STORE_MAX_AGE_HOURS", 48)) * time.Hour,
		AppEnv:          getenvDefault("APP_ENV", "production"),
		LogLevel:        parseLogLevel(getenvDefault("LOG_LEVEL", "info")),
	}

	cfg.APIKey = os.Getenv("WW_API_KEY")
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("WW_API_KEY must be set")
	}
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	stations, err := parseStations(os.Getenv("WW_STATIONS"))
	if err != nil {
		return nil, err
	}
	if len(stations) == 0 {
		// Fall back to a single coordinate pair.
		latRaw, lngRaw := os.Getenv("WW_LATITUDE"), os.Getenv("WW_LONGITUDE")
		if latRaw == "" || lngRaw == "" {
			return nil, fmt.Errorf("no stations configured: set WW_STATIONS or WW_LATITUDE/WW_LONGITUDE")
		}
		lat, err := strconv.ParseFloat(latRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WW_LATITUDE %q: %w", latRaw, err)
		}
		lng, err := strconv.ParseFloat(lngRaw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WW_LONGITUDE %q: %w", lngRaw, err)
		}
		stations = []willyweather.Target{{Latitude: &lat, Longitude: &lng}}
	}
	cfg.Stations = stations

	days := getenvInt("FORECAST_DAYS", entry.DefaultForecastDays)
	if days < 1 || days > entry.MaxForecastDays {
		return nil, fmt.Errorf("FORECAST_DAYS must be between 1 and %d, got %d", entry.MaxForecastDays, days)
	}

	interval := getenvInt("UPDATE_INTERVAL_MINUTES", 10)
	if interval < 1 {
		return nil, fmt.Errorf("UPDATE_INTERVAL_MINUTES must be at least 1, got %d", interval)
	}

	cfg.EntryOptions = entry.Options{
		Observational:  getenvBool("INCLUDE_OBSERVATIONAL", true),
		Warnings:       getenvBool("INCLUDE_WARNINGS", false),
		Rainfall:       getenvBool("INCLUDE_RAINFALL", false),
		UV:             getenvBool("INCLUDE_UV", false),
		SunMoon:        getenvBool("INCLUDE_SUNMOON", false),
		Tides:          getenvBool("INCLUDE_TIDES", false),
		Wind:           getenvBool("INCLUDE_WIND", false),
		ForecastDays:   days,
		UpdateInterval: time.Duration(interval) * time.Minute,
	}

	cfg.MQTT = MQTTConfig{
		Broker:          os.Getenv("MQTT_BROKER"),
		Port:            getenvInt("MQTT_PORT", 1883),
		Username:        os.Getenv("MQTT_USERNAME"),
		Password:        os.Getenv("MQTT_PASSWORD"),
		ClientID:        getenvDefault("MQTT_CLIENT_ID", "willyweather-bridge"),
		TopicPrefix:     getenvDefault("MQTT_TOPIC_PREFIX", "willyweather"),
		DiscoveryPrefix: getenvDefault("MQTT_DISCOVERY_PREFIX", "homeassistant"),
	}

	return cfg, nil
}

// parseStations reads the WW_STATIONS list. Entries are separated by
// semicolons and take one of three forms:
//
//	id:12345
//	coords:-33.89,151.27
//	addr:123 Beach Rd, Bondi NSW
func parseStations(raw string) ([]willyweather.Target, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var targets []willyweather.Target
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		form, value, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("invalid station spec %q: missing form prefix", part)
		}
		value = strings.TrimSpace(value)

		switch form {
		case "id":
			id, err := strconv.Atoi(value)
			if err != nil || id <= 0 {
				return nil, fmt.Errorf("invalid station id in %q", part)
			}
			targets = append(targets, willyweather.Target{StationID: id})
		case "coords":
			latRaw, lngRaw, found := strings.Cut(value, ",")
			if !found {
				return nil, fmt.Errorf("invalid coordinates in %q", part)
			}
			lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid latitude in %q", part)
			}
			lng, err := strconv.ParseFloat(strings.TrimSpace(lngRaw), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid longitude in %q", part)
			}
			targets = append(targets, willyweather.Target{Latitude: &lat, Longitude: &lng})
		case "addr":
			if value == "" {
				return nil, fmt.Errorf("empty address in %q", part)
			}
			targets = append(targets, willyweather.Target{Address: value})
		default:
			return nil, fmt.Errorf("unknown station form %q in %q", form, part)
		}
	}
	return targets, nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: invalid value for %s=%q, using default %d", key, v, def)
		return def
	}
	return n
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("WARN: invalid value for %s=%q, using default %t", key, v, def)
		return def
	}
	return b
}
