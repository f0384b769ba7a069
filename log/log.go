// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging facade of the farm. Records are emitted through
// the go-ethereum structured logger, so the output format matches the node
// tooling the operators already read.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Legacy numeric verbosity accepted on the command line.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes leveled key/value records.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// WithContext returns a logger carrying the given key/value context.
// The logger resolves the default sink on every call, so package level
// loggers pick up a handler installed later by SetDefault.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

type lazyLogger struct {
	ctx []any
}

func (l *lazyLogger) root() ethlog.Logger { return ethlog.Root().With(l.ctx...) }

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }
func (l *lazyLogger) Crit(msg string, ctx ...any)  { l.root().Crit(msg, ctx...) }

func (l *lazyLogger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(append(merged, l.ctx...), ctx...)
	return &lazyLogger{ctx: merged}
}

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// NewHandler creates a sink writing to w, either as JSON lines or as terminal text.
// Records below level are dropped, level may be changed at runtime through a *slog.LevelVar.
func NewHandler(w io.Writer, json, color bool, level slog.Leveler) slog.Handler {
	var inner slog.Handler
	if json {
		inner = ethlog.JSONHandlerWithLevel(w, LevelTrace)
	} else {
		inner = ethlog.NewTerminalHandlerWithLevel(w, LevelTrace, color)
	}
	return &levelHandler{inner: inner, level: level}
}

// levelHandler gates an inner handler on a level read at every record.
type levelHandler struct {
	inner slog.Handler
	level slog.Leveler
}

func (h *levelHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return lvl >= h.level.Level() && h.inner.Enabled(ctx, lvl)
}

func (h *levelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{inner: h.inner.WithAttrs(attrs), level: h.level}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{inner: h.inner.WithGroup(name), level: h.level}
}

// SetDefault routes all loggers to h.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// Discard silences all loggers.
func Discard() {
	SetDefault(ethlog.DiscardHandler())
}

// FromLegacyLevel converts a 0-5 verbosity into a level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}
