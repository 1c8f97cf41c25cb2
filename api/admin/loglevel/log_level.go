// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "loglevel")

var levels = []struct {
	name  string
	level slog.Level
}{
	{"trace", log.LevelTrace},
	{"debug", log.LevelDebug},
	{"info", log.LevelInfo},
	{"warn", log.LevelWarn},
	{"error", log.LevelError},
	{"crit", log.LevelCrit},
}

func parseLevel(name string) (slog.Level, bool) {
	for _, l := range levels {
		if l.name == name {
			return l.level, true
		}
	}
	return 0, false
}

// levelName names lvl the way it is set, falling back to slog's rendering.
func levelName(lvl slog.Level) string {
	for _, l := range levels {
		if l.level == lvl {
			return l.name
		}
	}
	return lvl.String()
}

// LogLevel reads and sets the process wide log level.
type LogLevel struct {
	logLevel *slog.LevelVar
}

func New(logLevel *slog.LevelVar) *LogLevel {
	return &LogLevel{logLevel: logLevel}
}

func (l *LogLevel) handleGet(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, Response{CurrentLevel: levelName(l.logLevel.Level())})
}

func (l *LogLevel) handleSet(w http.ResponseWriter, r *http.Request) error {
	var req Request
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	level, ok := parseLevel(req.Level)
	if !ok {
		return utils.BadRequest(errors.Errorf("unknown log level %q", req.Level))
	}
	l.logLevel.Set(level)
	logger.Info("log level updated", "level", req.Level)

	return utils.WriteJSON(w, Response{CurrentLevel: req.Level})
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("admin_get_loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGet))
	sub.Path("").
		Methods(http.MethodPost).
		Name("admin_post_loglevel").
		HandlerFunc(utils.WrapHandlerFunc(l.handleSet))
}
