package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/kelvins/geocoder"

	httpapi "github.com/i474232898/willyweather-bridge/internal/api/http"
	"github.com/i474232898/willyweather-bridge/internal/bridge"
	"github.com/i474232898/willyweather-bridge/internal/config"
	"github.com/i474232898/willyweather-bridge/internal/logging"
	"github.com/i474232898/willyweather-bridge/internal/mqtt"
	"github.com/i474232898/willyweather-bridge/internal/setup"
	"github.com/i474232898/willyweather-bridge/internal/store"
	"github.com/i474232898/willyweather-bridge/internal/weather"
	"github.com/i474232898/willyweather-bridge/internal/willyweather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slogger := logging.New(cfg, "willyweather-bridge")
	slog.SetDefault(slogger)

	// Address based station setup needs the Google geocoding API.
	if cfg.GeocoderAPIKey != "" {
		geocoder.ApiKey = cfg.GeocoderAPIKey
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	runtimes, err := buildRuntimes(ctx, cfg, httpClient, slogger)
	if err != nil {
		slogger.Error("setup failed", "error", err)
		os.Exit(1)
	}

	// Home Assistant discovery over MQTT, when a broker is configured.
	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled() {
		pub = mqtt.New(cfg.MQTT, slogger)
		if err := pub.Connect(ctx); err != nil {
			slogger.Error("mqtt connect failed", "broker", cfg.MQTT.Broker, "error", err)
			os.Exit(1)
		}
		for _, rt := range runtimes.All() {
			attachPublisher(pub, rt)
		}
	}

	// First refresh plus periodic polling per station.
	for _, rt := range runtimes.All() {
		if err := rt.Start(ctx); err != nil {
			slogger.Error("failed to start polling", "station", rt.Entry.StationID, "error", err)
			os.Exit(1)
		}
	}

	app := newApp(runtimes)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			slogger.Error("fiber server stopped", "error", err)
		}
	}()
	slogger.Info("bridge started", "port", cfg.Port, "stations", runtimes.Len(), "mqtt", cfg.MQTT.Enabled())

	// Wait for termination signal
	<-ctx.Done()
	slogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slogger.Error("error during shutdown", "error", err)
	}

	for _, rt := range runtimes.All() {
		rt.Stop()
	}
	if pub != nil {
		pub.Stop()
	}
}

// buildRuntimes runs the setup flow for every configured station. A station
// that fails setup is skipped with a warning; at least one must succeed.
func buildRuntimes(ctx context.Context, cfg *config.AppConfig, httpClient *http.Client, slogger *slog.Logger) (*bridge.Set, error) {
	set := bridge.NewSet()
	var configured []int

	for _, target := range cfg.Stations {
		rt, err := buildRuntime(ctx, cfg, httpClient, target, configured)
		if err != nil {
			slogger.Warn("skipping station", "target", target.String(), "error", err)
			continue
		}
		configured = append(configured, rt.Entry.StationID)
		set.Add(rt)
		slogger.Info("station configured", "station", rt.Entry.StationID, "name", rt.Entry.StationName)
	}

	if set.Len() == 0 {
		return nil, errors.New("no stations could be configured")
	}
	return set, nil
}

func buildRuntime(ctx context.Context, cfg *config.AppConfig, httpClient *http.Client, target willyweather.Target, configured []int) (*bridge.Runtime, error) {
	// One API client per station keeps circuit breaker state per entry.
	client := willyweather.NewClient(cfg.APIKey, httpClient)

	flow := setup.NewFlow(func(string) setup.StationResolver {
		return &willyweather.Resolver{Client: client}
	}, configured)

	if err := flow.SubmitUser(ctx, setup.UserInput{
		APIKey:    cfg.APIKey,
		StationID: target.StationID,
		Latitude:  target.Latitude,
		Longitude: target.Longitude,
		Address:   target.Address,
	}); err != nil {
		return nil, err
	}

	e, err := flow.SubmitOptions(setup.InputFromOptions(cfg.EntryOptions))
	if err != nil {
		return nil, err
	}

	st := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	return bridge.NewRuntime(e, client, st, nil), nil
}

// attachPublisher ties one runtime's lifecycle to the MQTT publisher:
// discovery on boot and on entity rebuilds, states after every successful
// poll, offline availability after failed ones.
func attachPublisher(pub *mqtt.Publisher, rt *bridge.Runtime) {
	pub.Announce(rt.Entry, rt.Entities())
	rt.OnRebuild(func() {
		pub.Announce(rt.Entry, rt.Entities())
	})
	rt.Coordinator.Subscribe(func(snap *weather.Snapshot) {
		pub.PublishStates(rt.Entry, rt.Entities(), snap)
	})
	rt.Coordinator.SubscribeFailure(func(error) {
		pub.PublishAvailability(rt.Entry, false)
	})
}

func newApp(runtimes *bridge.Set) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "willyweather-bridge",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "willyweather-bridge",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, runtimes)

	return app
}
