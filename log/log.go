// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
)

// Logger is the leveled key/value logger used across the repo.
type Logger interface {
	With(ctx ...any) Logger

	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type logger struct {
	inner *slog.Logger
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{l.inner.With(ctx...)}
}

func (l *logger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }

var root atomic.Pointer[logger]

func init() {
	root.Store(&logger{slog.New(newDiscardHandler())})
}

// Root returns the process-wide root logger.
func Root() Logger {
	return root.Load()
}

// WithContext returns a child of the root logger carrying the given context.
// The usual pattern is a package-level `var logger = log.WithContext("pkg", ...)`.
func WithContext(ctx ...any) Logger {
	return Root().With(ctx...)
}

// SetDefault replaces the root logger handler.
func SetDefault(h slog.Handler) {
	root.Store(&logger{slog.New(h)})
}

// NewTerminalHandler creates a human-oriented stderr handler.
func NewTerminalHandler(level slog.Level, useColor bool) slog.Handler {
	return newTermHandler(os.Stderr, level, useColor)
}

// NewJSONHandler creates a machine-oriented stderr handler.
func NewJSONHandler(level slog.Level) slog.Handler {
	return slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
}

// VerbosityToLevel maps a 0-9 CLI verbosity value to a slog level.
func VerbosityToLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 1:
		return slog.LevelError
	case verbosity == 2:
		return slog.LevelWarn
	case verbosity == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

type discardHandler struct{}

func newDiscardHandler() slog.Handler { return &discardHandler{} }

func (h *discardHandler) Handle(context.Context, slog.Record) error  { return nil }
func (h *discardHandler) Enabled(context.Context, slog.Level) bool   { return false }
func (h *discardHandler) WithGroup(string) slog.Handler              { return h }
func (h *discardHandler) WithAttrs([]slog.Attr) slog.Handler         { return h }
