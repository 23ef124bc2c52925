// Package logging configures the process-wide structured logger used by
// every other package in this module. Callers elsewhere import
// github.com/rs/zerolog/log directly and call it the same way this package's
// own code does — logging.Setup only fixes the level and output format once,
// at process start.
package logging

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. level is one of
// "debug"|"info"|"warn"|"error" (case-insensitive, default "info"); pretty
// selects a human-readable console writer instead of JSON (useful for local
// runs of cmd/engine and cmd/bench, never for production).
func Setup(level string, pretty bool) {
	zerolog.SetGlobalLevel(parseLevel(level))
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w = os.Stderr
	if pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
		return
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "":
		return zerolog.InfoLevel
	default:
		return zerolog.InfoLevel
	}
}
