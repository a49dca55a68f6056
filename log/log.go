// Package log provides structured, observational logging for the
// superlight verifier. Per spec.md §7, logging here never drives
// control flow: Client decides everything through peaksVsPeaks and
// treeVsTree's return values, and only reports the outcome through the
// event-shaped helpers below. Built on log/slog with per-module child
// loggers, the same shape as the teacher's pkg/log.
package log

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with module-scoped context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(slog.LevelInfo)
}

// New creates a Logger that writes JSON to stderr at the given level.
func New(level slog.Level) *Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return &Logger{inner: slog.New(h)}
}

// NewWithHandler creates a Logger backed by the supplied slog.Handler.
// Tests use this to capture log output.
func NewWithHandler(h slog.Handler) *Logger {
	return &Logger{inner: slog.New(h)}
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger }

// Module returns a child logger tagged with a "module" attribute — the
// way client obtains its own logger in New.
func (l *Logger) Module(name string) *Logger {
	return &Logger{inner: l.inner.With("module", name)}
}

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) { l.inner.Info(msg, args...) }

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) { l.inner.Warn(msg, args...) }

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// AuditRejected reports that a prover was dropped during the MMR-audit
// phase (spec.md §4.5.1), either because it failed to answer or its
// claimed peaks didn't verify. Debug-level: every dishonest prover
// rejected here is expected traffic, not an operator-facing warning.
func (l *Logger) AuditRejected(proverIndex int, reason string) {
	l.Debug("prover rejected during mmr audit", "prover", proverIndex, "reason", reason)
}

// GameDecided reports the outcome of one tournament game between two
// provers (spec.md §4.5.2).
func (l *Logger) GameDecided(winner, loser int) {
	l.Info("bisection game decided", "winner", winner, "loser", loser)
}

// CommitteeAdopted reports that Sync committed to the given prover's
// latest sync committee (spec.md §4.5.7).
func (l *Logger) CommitteeAdopted(proverIndex int) {
	l.Info("adopted committee", "prover", proverIndex)
}

// FatalAbort reports a protocol invariant violation immediately before
// Sync returns a FatalProtocolError.
func (l *Logger) FatalAbort(reason string) {
	l.Error("protocol invariant violated", "reason", reason)
}
