// Package logging provides the structured logger used throughout the
// telemetry core, replacing ad-hoc log.Printf calls with request-scoped
// zerolog loggers carrying a correlation ID.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const loggerKey contextKey = "logger"

// Base is the process-wide root logger. Init must be called once at
// startup before any request-scoped logger is derived from it.
var Base zerolog.Logger

// Init configures the root logger. ginMode "release" selects JSON output;
// anything else selects a human-readable console writer.
func Init(ginMode string) {
	zerolog.TimeFieldFormat = time.RFC3339

	if ginMode == "release" {
		Base = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	Base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// NewCorrelationID returns a short, log-friendly correlation ID.
func NewCorrelationID() string {
	return uuid.New().String()[:8]
}

// WithContext attaches logger to ctx.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or Base if none was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return l
	}
	return Base
}
