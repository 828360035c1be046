package entry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultUpdateInterval matches the upstream observation cadence.
	DefaultUpdateInterval = 10 * time.Minute

	// DefaultForecastDays is the default day span requested from the API.
	DefaultForecastDays = 5

	// MaxForecastDays is the API's day span ceiling.
	MaxForecastDays = 7
)

// Options is the mutable feature configuration attached to an Entry. It is
// copied out on read so pollers always see a consistent set.
type Options struct {
	Observational bool
	Warnings      bool
	Rainfall      bool
	UV            bool
	SunMoon       bool
	Tides         bool
	Wind          bool

	ForecastDays   int
	UpdateInterval time.Duration
}

// DefaultOptions returns the options offered during setup: current
// conditions on, every forecast extra off.
func DefaultOptions() Options {
	return Options{
		Observational:  true,
		ForecastDays:   DefaultForecastDays,
		UpdateInterval: DefaultUpdateInterval,
	}
}

// ForecastTypes assembles the forecast feature list sent upstream. The
// weather series is always requested; the rest follow their toggles.
// Warnings come from their own endpoint and never appear here.
func (o Options) ForecastTypes() []string {
	types := []string{"weather"}
	if o.Rainfall {
		types = append(types, "rainfall")
	}
	if o.UV {
		types = append(types, "uv")
	}
	if o.SunMoon {
		types = append(types, "sunrisesunset")
	}
	if o.Tides {
		types = append(types, "tides")
	}
	if o.Wind {
		types = append(types, "wind")
	}
	return types
}

// Entry is one configured station: the immutable identity written by the
// setup flow plus the options editable afterwards.
type Entry struct {
	ID          string
	APIKey      string
	StationID   int
	StationName string

	mu      sync.RWMutex
	options Options
}

// New creates an Entry with a fresh unique id.
func New(apiKey string, stationID int, stationName string, opts Options) *Entry {
	return &Entry{
		ID:          uuid.NewString(),
		APIKey:      apiKey,
		StationID:   stationID,
		StationName: stationName,
		options:     opts,
	}
}

// Options returns a copy of the current options.
func (e *Entry) Options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.options
}

// SetOptions replaces the options.
func (e *Entry) SetOptions(o Options) {
	e.mu.Lock()
	e.options = o
	e.mu.Unlock()
}
