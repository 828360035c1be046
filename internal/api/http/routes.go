package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/willyweather-bridge/internal/bridge"
	"github.com/i474232898/willyweather-bridge/internal/entity"
	"github.com/i474232898/willyweather-bridge/internal/setup"
	"github.com/i474232898/willyweather-bridge/internal/store"
	"github.com/i474232898/willyweather-bridge/internal/weather"
)

var validate = validator.New()

const refreshTimeout = 30 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, runtimes *bridge.Set) {
	v1 := app.Group("/api/v1")

	v1.Get("/entries", func(c *fiber.Ctx) error {
		summaries := make([]entrySummary, 0, runtimes.Len())
		for _, rt := range runtimes.All() {
			summaries = append(summaries, summarize(rt))
		}
		return c.JSON(summaries)
	})

	v1.Get("/entries/:entryID/entities", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		snap := rt.Coordinator.Snapshot()
		available := rt.Coordinator.Healthy()

		entities := rt.Entities()
		states := make([]entityState, 0, len(entities))
		for _, ent := range entities {
			states = append(states, stateOf(ent, snap, available))
		}
		return c.JSON(states)
	})

	v1.Get("/entries/:entryID/entities/:entityKey", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		ent, ok := rt.Entity(c.Params("entityKey"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown entity")
		}
		return c.JSON(stateOf(ent, rt.Coordinator.Snapshot(), rt.Coordinator.Healthy()))
	})

	v1.Get("/entries/:entryID/weather", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		ent, ok := rt.Entity("weather")
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown entity")
		}
		w, ok := ent.(*entity.Weather)
		if !ok {
			return fiber.NewError(fiber.StatusInternalServerError, "weather entity has unexpected type")
		}

		snap := rt.Coordinator.Snapshot()
		return c.JSON(fiber.Map{
			"station": fiber.Map{
				"id":   rt.Entry.StationID,
				"name": rt.Entry.StationName,
			},
			"healthy":   rt.Coordinator.Healthy(),
			"condition": w.State(snap),
			"current":   w.Current(snap),
			"forecast":  w.Forecast(snap),
		})
	})

	v1.Get("/entries/:entryID/snapshot", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		snap := rt.Coordinator.Snapshot()
		if snap == nil {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot for this entry yet")
		}
		return c.JSON(snap)
	})

	v1.Get("/entries/:entryID/history", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		if rt.Store == nil {
			return fiber.NewError(fiber.StatusNotFound, "no history kept for this entry")
		}

		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := rt.Store.GetRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no snapshots for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch snapshot history")
		}

		if req.Limit > 0 && len(snapshots) > req.Limit {
			snapshots = snapshots[len(snapshots)-req.Limit:]
		}

		return c.JSON(fiber.Map{
			"station":   rt.Entry.StationID,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Put("/entries/:entryID/options", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		var req optionsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := rt.ApplyOptions(req.toInput()); err != nil {
			var flowErr *setup.FlowError
			if errors.As(err, &flowErr) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error":   true,
					"key":     flowErr.Key,
					"message": flowErr.Error(),
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to apply options")
		}

		return c.JSON(summarize(rt))
	})

	v1.Post("/entries/:entryID/refresh", func(c *fiber.Ctx) error {
		rt, err := requireRuntime(c, runtimes)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), refreshTimeout)
		defer cancel()

		if err := rt.Coordinator.Refresh(ctx); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "refresh failed: "+err.Error())
		}
		return c.JSON(summarize(rt))
	})
}

func requireRuntime(c *fiber.Ctx, runtimes *bridge.Set) (*bridge.Runtime, error) {
	rt, ok := runtimes.Get(c.Params("entryID"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "unknown entry")
	}
	return rt, nil
}

// entrySummary is the list and detail representation of one entry.
type entrySummary struct {
	ID             string   `json:"id"`
	StationID      int      `json:"stationId"`
	StationName    string   `json:"stationName"`
	Healthy        bool     `json:"healthy"`
	LastSuccess    string   `json:"lastSuccess,omitempty"`
	LastError      string   `json:"lastError,omitempty"`
	ForecastTypes  []string `json:"forecastTypes"`
	ForecastDays   int      `json:"forecastDays"`
	UpdateInterval string   `json:"updateInterval"`
}

func summarize(rt *bridge.Runtime) entrySummary {
	opts := rt.Entry.Options()
	s := entrySummary{
		ID:             rt.Entry.ID,
		StationID:      rt.Entry.StationID,
		StationName:    rt.Entry.StationName,
		Healthy:        rt.Coordinator.Healthy(),
		ForecastTypes:  opts.ForecastTypes(),
		ForecastDays:   opts.ForecastDays,
		UpdateInterval: opts.UpdateInterval.String(),
	}
	if last := rt.Coordinator.LastSuccess(); !last.IsZero() {
		s.LastSuccess = last.UTC().Format(time.RFC3339)
	}
	if err := rt.Coordinator.LastError(); err != nil {
		s.LastError = err.Error()
	}
	return s
}

// entityState is the wire representation of one entity's projected state.
type entityState struct {
	UniqueID    string         `json:"uniqueId"`
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	State       any            `json:"state"`
	Unit        string         `json:"unit,omitempty"`
	Icon        string         `json:"icon,omitempty"`
	DeviceClass string         `json:"deviceClass,omitempty"`
	StateClass  string         `json:"stateClass,omitempty"`
	Available   bool           `json:"available"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

func stateOf(ent entity.Entity, snap *weather.Snapshot, available bool) entityState {
	meta := ent.Meta()
	return entityState{
		UniqueID:    ent.UniqueID(),
		Key:         ent.Key(),
		Name:        ent.Name(),
		Kind:        string(ent.Kind()),
		State:       ent.State(snap),
		Unit:        meta.Unit,
		Icon:        meta.Icon,
		DeviceClass: meta.DeviceClass,
		StateClass:  meta.StateClass,
		Available:   available,
		Attributes:  ent.Attributes(snap),
	}
}

// optionsRequest is the body for updating an entry's options.
type optionsRequest struct {
	Observational         bool `json:"observational"`
	Warnings              bool `json:"warnings"`
	Rainfall              bool `json:"rainfall"`
	UV                    bool `json:"uv"`
	SunMoon               bool `json:"sunMoon"`
	Tides                 bool `json:"tides"`
	Wind                  bool `json:"wind"`
	ForecastDays          int  `json:"forecastDays"`
	UpdateIntervalMinutes int  `json:"updateIntervalMinutes"`
}

func (o optionsRequest) toInput() setup.OptionsInput {
	return setup.OptionsInput{
		Observational:         o.Observational,
		Warnings:              o.Warnings,
		Rainfall:              o.Rainfall,
		UV:                    o.UV,
		SunMoon:               o.SunMoon,
		Tides:                 o.Tides,
		Wind:                  o.Wind,
		ForecastDays:          o.ForecastDays,
		UpdateIntervalMinutes: o.UpdateIntervalMinutes,
	}
}

// historyQuery holds query parameters for the history endpoint. Limit
// keeps the newest snapshots when set.
type historyQuery struct {
	From  time.Time `validate:"required"`
	To    time.Time `validate:"required,gtefield=From"`
	Limit int       `validate:"omitempty,gte=1"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		h.Limit = limit
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
