// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is a thin layer over go-ethereum's slog based logger.
// Package level loggers created by WithContext always write through the current
// root handler, so they can be declared as package variables before the
// command line configures logging.
package log

import (
	"context"
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

// legacy verbosity levels, accepted by the --verbosity flag.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	With(ctx ...any) Logger
	Log(level slog.Level, msg string, ctx ...any)
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
}

// WithContext returns a logger which prefixes ctx to every record.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

// Root returns the root logger.
func Root() Logger {
	return &logger{}
}

// SetDefault replaces the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// FromLegacyLevel converts a legacy verbosity number to a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	return ethlog.FromLegacyLevel(lvl)
}

type logger struct {
	ctx []any
}

func (l *logger) join(ctx []any) []any {
	if len(l.ctx) == 0 {
		return ctx
	}
	out := make([]any, 0, len(l.ctx)+len(ctx))
	out = append(out, l.ctx...)
	return append(out, ctx...)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{ctx: l.join(ctx)}
}

func (l *logger) Log(level slog.Level, msg string, ctx ...any) {
	ethlog.Root().Log(level, msg, l.join(ctx)...)
}

func (l *logger) Trace(msg string, ctx ...any) { l.Log(LevelTrace, msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.Log(LevelDebug, msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.Log(LevelInfo, msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.Log(LevelWarn, msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.Log(LevelError, msg, ctx...) }

func (l *logger) Crit(msg string, ctx ...any) {
	ethlog.Root().Crit(msg, l.join(ctx)...)
}

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Enabled(ctx, level)
}
