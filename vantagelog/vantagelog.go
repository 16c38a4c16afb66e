// Package vantagelog provides the engine's structured logging convention: one
// zerolog.Logger per subsystem, each tagged with a "component" field so
// interleaved log lines from DataStore, ComputeEngine, and the scheduler
// remain attributable.
package vantagelog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	baseOnce sync.Once
	base     zerolog.Logger
)

// Base returns the process-wide root logger, initializing it on first use
// with a console writer in development and a plain JSON writer otherwise,
// selected by the VANTAGE_LOG_PRETTY environment variable.
func Base() zerolog.Logger {
	baseOnce.Do(func() {
		var w = os.Stderr
		if os.Getenv("VANTAGE_LOG_PRETTY") != "" {
			base = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
			return
		}
		base = zerolog.New(w).With().Timestamp().Logger()
	})
	return base
}

// For returns a sub-logger tagged with the given component name, the
// convention every subsystem constructor in vantage-engine follows for its
// logger field (mirrors the teacher corpus's "client" tag on API clients).
//
// Parameters:
//   - component: the subsystem name, e.g. "datastore", "scheduler", "compute"
//
// Returns:
//   - zerolog.Logger: a sub-logger with component set
func For(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}
