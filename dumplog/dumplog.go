// Package dumplog wires the dependency-sort packages' diagnostic output
// (tie-break notes from tnsort, unresolved-loop warnings from looprepair)
// to a single slog logger, configured from the environment the way a CLI
// entry point would.
package dumplog

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures the default slog logger from DUMPSORT_LOG_LEVEL.
// Supported levels: debug, info, warn, error. Defaults to warn so that a
// library embedder gets unresolved-loop warnings without debug noise.
func Init() {
	level := slog.LevelWarn
	if raw, ok := os.LookupEnv("DUMPSORT_LOG_LEVEL"); ok {
		switch strings.ToLower(raw) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// New builds a standalone logger at the given level, for callers (like
// dumpsort.SortDependencyAware) that want an explicit logger rather than
// mutating the process-wide default.
func New(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
