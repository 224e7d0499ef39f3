// Package logging configures the process-wide zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// New builds the service logger. Production emits JSON to stdout; anything
// else gets the human console writer. The returned logger is also installed
// as zerolog's global logger.
func New(serviceName string, environment string) zerolog.Logger {
	level := zerolog.InfoLevel

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}

	var logger zerolog.Logger

	if environment == "production" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	logger = logger.Level(level).With().
		Timestamp().
		Str("service", serviceName).
		Logger()

	log.Logger = logger

	return logger
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() zerolog.Logger {
	return zerolog.Nop()
}
