package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/willyweather-bridge/internal/entry"
	"github.com/i474232898/willyweather-bridge/internal/store"
	"github.com/i474232898/willyweather-bridge/internal/weather"
)

// fetchTimeout bounds one full poll cycle (up to three sequential calls).
const fetchTimeout = 30 * time.Second

// Client is the slice of the API client the coordinator needs.
type Client interface {
	FetchObservational(ctx context.Context, stationID int) (map[string]any, error)
	FetchForecast(ctx context.Context, stationID int, types []string, days int) (weather.Forecast, error)
	FetchWarnings(ctx context.Context, stationID int) ([]weather.Warning, error)
}

// Subscriber is notified after each successful snapshot swap.
type Subscriber func(*weather.Snapshot)

// FailureSubscriber is notified after each failed poll cycle.
type FailureSubscriber func(error)

// Coordinator polls the API for one entry and owns its snapshot. Each cycle
// runs sequentially: observational, then forecast, then warnings when
// enabled. Either the whole cycle commits or the previous snapshot stays.
type Coordinator struct {
	entry  *entry.Entry
	client Client
	store  *store.MemoryStore
	logger *slog.Logger

	scheduler *gocron.Scheduler

	mu          sync.RWMutex
	snapshot    *weather.Snapshot
	lastErr     error
	lastSuccess time.Time
	subscribers []Subscriber
	failureSubs []FailureSubscriber
}

// New creates a Coordinator for one entry. st may be nil when no history
// is kept.
func New(e *entry.Entry, client Client, st *store.MemoryStore, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		entry:     e,
		client:    client,
		store:     st,
		logger:    logger.With("station", e.StationID),
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Subscribe registers a callback invoked after each successful snapshot
// swap, in registration order, on the polling goroutine.
func (c *Coordinator) Subscribe(fn Subscriber) {
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// SubscribeFailure registers a callback invoked after each failed cycle.
func (c *Coordinator) SubscribeFailure(fn FailureSubscriber) {
	c.mu.Lock()
	c.failureSubs = append(c.failureSubs, fn)
	c.mu.Unlock()
}

// Refresh runs one full fetch cycle now.
func (c *Coordinator) Refresh(ctx context.Context) error {
	opts := c.entry.Options()

	var (
		obs      map[string]any
		warnings []weather.Warning
		err      error
	)

	if opts.Observational {
		obs, err = c.client.FetchObservational(ctx, c.entry.StationID)
		if err != nil {
			return c.fail(fmt.Errorf("observational fetch: %w", err))
		}
	}

	forecast, err := c.client.FetchForecast(ctx, c.entry.StationID, opts.ForecastTypes(), opts.ForecastDays)
	if err != nil {
		return c.fail(fmt.Errorf("forecast fetch: %w", err))
	}

	if opts.Warnings {
		warnings, err = c.client.FetchWarnings(ctx, c.entry.StationID)
		if err != nil {
			return c.fail(fmt.Errorf("warnings fetch: %w", err))
		}
	}

	snap := &weather.Snapshot{
		Observational: obs,
		Forecast:      forecast,
		Warnings:      warnings,
		FetchedAt:     time.Now().UTC(),
	}

	c.mu.Lock()
	c.snapshot = snap
	c.lastErr = nil
	c.lastSuccess = snap.FetchedAt
	subs := make([]Subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.mu.Unlock()

	if c.store != nil {
		c.store.SaveSnapshot(snap)
	}

	for _, fn := range subs {
		fn(snap)
	}

	c.logger.Debug("snapshot updated", "fetchedAt", snap.FetchedAt, "warnings", len(warnings))
	return nil
}

// fail records the error, keeps the previous snapshot, and notifies the
// failure subscribers.
func (c *Coordinator) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	subs := make([]FailureSubscriber, len(c.failureSubs))
	copy(subs, c.failureSubs)
	c.mu.Unlock()

	c.logger.Warn("update failed, keeping previous snapshot", "error", err)

	for _, fn := range subs {
		fn(err)
	}
	return err
}

// Snapshot returns the current snapshot, nil before the first success.
func (c *Coordinator) Snapshot() *weather.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Healthy reports whether the most recent poll succeeded.
func (c *Coordinator) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr == nil && c.snapshot != nil
}

// LastError returns the most recent cycle error, nil after a success.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// LastSuccess returns the completion time of the last successful cycle.
func (c *Coordinator) LastSuccess() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

// Start schedules periodic refreshes at the entry's update interval.
func (c *Coordinator) Start() error {
	minutes := int(c.entry.Options().UpdateInterval.Minutes())
	if minutes <= 0 {
		minutes = int(entry.DefaultUpdateInterval.Minutes())
	}

	_, err := c.scheduler.Every(minutes).Minutes().Do(func() {
		c.logger.Debug("running scheduled refresh")

		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		_ = c.Refresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	c.scheduler.StartAsync()
	c.logger.Info("polling started", "interval", fmt.Sprintf("%dm", minutes))
	return nil
}

// Reschedule replaces the polling job, picking up the entry's current
// update interval.
func (c *Coordinator) Reschedule() error {
	c.scheduler.Clear()
	return c.Start()
}

// Stop cancels future polls.
func (c *Coordinator) Stop() {
	c.scheduler.Stop()
}
