package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/i474232898/willyweather-bridge/internal/config"
)

// New builds the process logger: colorized tint output for development,
// JSON for everything else.
func New(cfg *config.AppConfig, appName string) *slog.Logger {
	if cfg.AppEnv == "development" {
		handler := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(handler).With("app", appName)
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(handler).With("app", appName, "env", cfg.AppEnv)
}
