package setup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/willyweather"
)

var validate = validator.New()

// Stable error keys surfaced to user interfaces.
const (
	ErrKeyInvalidInput        = "invalid_input"
	ErrKeyNoStationFound      = "no_station_found"
	ErrKeyInvalidStationOrKey = "invalid_station_or_key"
	ErrKeyAlreadyConfigured   = "already_configured"
	ErrKeyCannotConnect       = "cannot_connect"
)

// FlowError couples a stable error key with the step it happened in and the
// underlying cause.
type FlowError struct {
	Key  string
	Step string
	Err  error
}

func (e *FlowError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (step %s): %v", e.Key, e.Step, e.Err)
	}
	return fmt.Sprintf("%s (step %s)", e.Key, e.Step)
}

func (e *FlowError) Unwrap() error { return e.Err }

// StationResolver resolves a setup target into a station.
type StationResolver interface {
	Resolve(ctx context.Context, target willyweather.Target) (willyweather.Resolved, error)
}

// ResolverFactory builds a resolver for a submitted API key.
type ResolverFactory func(apiKey string) StationResolver

// UserInput is the first step: credentials plus a station target. One of
// StationID, the coordinate pair, or Address must be given.
type UserInput struct {
	APIKey    string   `validate:"required"`
	StationID int      `validate:"omitempty,gt=0"`
	Latitude  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `validate:"omitempty,gte=-180,lte=180"`
	Address   string
}

// OptionsInput is the second step: feature toggles and cadence.
type OptionsInput struct {
	Observational bool
	Warnings      bool
	Rainfall      bool
	UV            bool
	SunMoon       bool
	Tides         bool
	Wind          bool

	ForecastDays          int `validate:"min=1,max=7"`
	UpdateIntervalMinutes int `validate:"min=1"`
}

func (in OptionsInput) toOptions() entry.Options {
	return entry.Options{
		Observational:  in.Observational,
		Warnings:       in.Warnings,
		Rainfall:       in.Rainfall,
		UV:             in.UV,
		SunMoon:        in.SunMoon,
		Tides:          in.Tides,
		Wind:           in.Wind,
		ForecastDays:   in.ForecastDays,
		UpdateInterval: time.Duration(in.UpdateIntervalMinutes) * time.Minute,
	}
}

// InputFromOptions converts an options value back into flow input.
func InputFromOptions(o entry.Options) OptionsInput {
	return OptionsInput{
		Observational:         o.Observational,
		Warnings:              o.Warnings,
		Rainfall:              o.Rainfall,
		UV:                    o.UV,
		SunMoon:               o.SunMoon,
		Tides:                 o.Tides,
		Wind:                  o.Wind,
		ForecastDays:          o.ForecastDays,
		UpdateIntervalMinutes: int(o.UpdateInterval.Minutes()),
	}
}

// Flow walks the two setup steps and ends with a ready Entry.
type Flow struct {
	newResolver ResolverFactory
	configured  map[int]bool

	apiKey   string
	resolved willyweather.Resolved
	userDone bool
}

// NewFlow starts a setup flow. configured lists station ids that already
// have entries; resolving to one of them aborts the flow.
func NewFlow(factory ResolverFactory, configured []int) *Flow {
	set := make(map[int]bool, len(configured))
	for _, id := range configured {
		set[id] = true
	}
	return &Flow{newResolver: factory, configured: set}
}

// SubmitUser validates the credentials and resolves the station. On success
// the flow advances to the options step.
func (f *Flow) SubmitUser(ctx context.Context, in UserInput) error {
	if err := validate.Struct(in); err != nil {
		return &FlowError{Key: ErrKeyInvalidInput, Step: "user", Err: err}
	}

	resolver := f.newResolver(in.APIKey)
	res, err := resolver.Resolve(ctx, willyweather.Target{
		StationID: in.StationID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Address:   in.Address,
	})
	if err != nil {
		return &FlowError{Key: classifyResolveError(err), Step: "user", Err: err}
	}

	if f.configured[res.StationID] {
		return &FlowError{Key: ErrKeyAlreadyConfigured, Step: "user"}
	}

	f.apiKey = in.APIKey
	f.resolved = res
	f.userDone = true
	return nil
}

// Resolved returns the station chosen by the user step, for display before
// the options step is submitted.
func (f *Flow) Resolved() (willyweather.Resolved, bool) {
	return f.resolved, f.userDone
}

// SubmitOptions validates the toggles and creates the entry. SubmitUser
// must have succeeded first.
func (f *Flow) SubmitOptions(in OptionsInput) (*entry.Entry, error) {
	if !f.userDone {
		return nil, &FlowError{Key: ErrKeyInvalidInput, Step: "options", Err: errors.New("user step not completed")}
	}
	if err := validate.Struct(in); err != nil {
		return nil, &FlowError{Key: ErrKeyInvalidInput, Step: "options", Err: err}
	}

	return entry.New(f.apiKey, f.resolved.StationID, f.resolved.StationName, in.toOptions()), nil
}

// ApplyOptions is the options flow for an existing entry: validate and swap
// the options in place.
func ApplyOptions(e *entry.Entry, in OptionsInput) error {
	if err := validate.Struct(in); err != nil {
		return &FlowError{Key: ErrKeyInvalidInput, Step: "options", Err: err}
	}
	e.SetOptions(in.toOptions())
	return nil
}

// classifyResolveError maps client errors onto flow error keys.
func classifyResolveError(err error) string {
	switch {
	case errors.Is(err, willyweather.ErrAuth),
		errors.Is(err, willyweather.ErrNotFound),
		errors.Is(err, willyweather.ErrBadRequest):
		return ErrKeyInvalidStationOrKey
	case errors.Is(err, willyweather.ErrNoStation):
		return ErrKeyNoStationFound
	default:
		return ErrKeyCannotConnect
	}
}
