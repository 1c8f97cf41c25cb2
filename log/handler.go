// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// NewTerminalHandler returns a human friendly handler filtered by lvl.
// Changes to lvl apply to records logged afterwards.
func NewTerminalHandler(wr io.Writer, lvl *slog.LevelVar, useColor bool) slog.Handler {
	return &leveledHandler{
		inner: ethlog.NewTerminalHandlerWithLevel(wr, LevelTrace, useColor),
		lvl:   lvl,
	}
}

// JSONHandler returns a handler which prints records in JSON format filtered by lvl.
// Changes to lvl apply to records logged afterwards.
func JSONHandler(wr io.Writer, lvl *slog.LevelVar) slog.Handler {
	return &leveledHandler{
		inner: ethlog.JSONHandlerWithLevel(wr, LevelTrace),
		lvl:   lvl,
	}
}

// leveledHandler reads its level on every record, the inner handler lets
// everything through.
type leveledHandler struct {
	inner slog.Handler
	lvl   slog.Leveler
}

func (h *leveledHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

func (h *leveledHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *leveledHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &leveledHandler{inner: h.inner.WithAttrs(attrs), lvl: h.lvl}
}

func (h *leveledHandler) WithGroup(name string) slog.Handler {
	return &leveledHandler{inner: h.inner.WithGroup(name), lvl: h.lvl}
}
