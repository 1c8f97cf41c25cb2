// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

func TestLogLevelHandler(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		body      string
		wantCode  int
		wantLevel string
		want      slog.Level
	}{
		{"set debug", http.MethodPost, `{"level":"debug"}`, http.StatusOK, "debug", log.LevelDebug},
		{"set trace", http.MethodPost, `{"level":"trace"}`, http.StatusOK, "trace", log.LevelTrace},
		{"set crit", http.MethodPost, `{"level":"crit"}`, http.StatusOK, "crit", log.LevelCrit},
		{"get", http.MethodGet, "", http.StatusOK, "info", log.LevelInfo},
		{"unknown level", http.MethodPost, `{"level":"loud"}`, http.StatusBadRequest, "", log.LevelInfo},
		{"unknown field", http.MethodPost, `{"verbosity":"debug"}`, http.StatusBadRequest, "", log.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logLevel slog.LevelVar
			logLevel.Set(log.LevelInfo)

			router := mux.NewRouter()
			New(&logLevel).Mount(router, "/admin/loglevel")

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(tt.method, "/admin/loglevel", strings.NewReader(tt.body)))

			require.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Equal(t, tt.want, logLevel.Level())
			if tt.wantLevel != "" {
				var response Response
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&response))
				assert.Equal(t, tt.wantLevel, response.CurrentLevel)
			}
		})
	}
}

func TestLevelName(t *testing.T) {
	assert.Equal(t, "warn", levelName(log.LevelWarn))
	assert.Equal(t, slog.Level(3).String(), levelName(slog.Level(3)))
}
