package bridge

import (
	"context"
	"log/slog"
	"sync"

	"github.com/i474232898/willyweather-bridge/internal/coordinator"
	"github.com/i474232898/willyweather-bridge/internal/entity"
	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/setup"
	"github.com/i474232898/willyweather-bridge/internal/store"
)

// Runtime bundles everything one config entry owns: the API client, the
// coordinator, the snapshot history, and the entity set. Collaborators get
// handed the Runtime instead of reaching for shared state.
type Runtime struct {
	Entry       *entry.Entry
	Coordinator *coordinator.Coordinator
	Store       *store.MemoryStore

	client coordinator.Client
	logger *slog.Logger

	mu           sync.RWMutex
	entities     []entity.Entity
	rebuildHooks []func()
}

// NewRuntime wires a runtime for one entry. st may be nil when no history
// is kept.
func NewRuntime(e *entry.Entry, client coordinator.Client, st *store.MemoryStore, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		Entry:       e,
		Coordinator: coordinator.New(e, client, st, logger),
		Store:       st,
		client:      client,
		logger:      logger,
		entities:    entity.Build(e),
	}
}

// Entities returns the current entity set.
func (r *Runtime) Entities() []entity.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entities
}

// Entity finds one entity by key.
func (r *Runtime) Entity(key string) (entity.Entity, bool) {
	for _, ent := range r.Entities() {
		if ent.Key() == key {
			return ent, true
		}
	}
	return nil, false
}

// OnRebuild registers a callback invoked after the entity set is rebuilt.
func (r *Runtime) OnRebuild(fn func()) {
	r.mu.Lock()
	r.rebuildHooks = append(r.rebuildHooks, fn)
	r.mu.Unlock()
}

// ApplyOptions runs the options flow against the entry, rebuilds the
// entity set, and reschedules polling so the next cycle uses the new
// forecast list and cadence.
func (r *Runtime) ApplyOptions(in setup.OptionsInput) error {
	if err := setup.ApplyOptions(r.Entry, in); err != nil {
		return err
	}

	r.mu.Lock()
	r.entities = entity.Build(r.Entry)
	hooks := make([]func(), len(r.rebuildHooks))
	copy(hooks, r.rebuildHooks)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if err := r.Coordinator.Reschedule(); err != nil {
		return err
	}

	r.logger.Info("options updated",
		"station", r.Entry.StationID,
		"forecastTypes", r.Entry.Options().ForecastTypes(),
		"interval", r.Entry.Options().UpdateInterval,
	)
	return nil
}

// Start runs one immediate refresh, then begins periodic polling. A failed
// first refresh is reported by the coordinator's health and retried on the
// schedule.
func (r *Runtime) Start(ctx context.Context) error {
	if err := r.Coordinator.Refresh(ctx); err != nil {
		r.logger.Warn("initial refresh failed", "station", r.Entry.StationID, "error", err)
	}
	return r.Coordinator.Start()
}

// Stop halts polling and releases the entry's connections.
func (r *Runtime) Stop() {
	r.Coordinator.Stop()
	if closer, ok := r.client.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}
