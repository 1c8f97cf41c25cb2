// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/log"
)

// mockLogger is a simple logger implementation for testing purposes
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }

func (m *mockLogger) Log(_ slog.Level, _ string, _ ...any) {}

func (m *mockLogger) Trace(_ string, _ ...any) {}

func (m *mockLogger) Debug(_ string, _ ...any) {}

func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Crit(_ string, _ ...any) {}

func (m *mockLogger) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLoggerHandler(t *testing.T) {
	ok := func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}
	slow := func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(20 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}
	broken := func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}

	tests := []struct {
		name                 string
		handler              http.HandlerFunc
		enabled              bool
		slowQueriesThreshold time.Duration
		log5xxErrors         bool
		expectedStatusCode   int
		shouldLog            bool
	}{
		{"enabled", ok, true, 0, false, http.StatusOK, true},
		{"disabled", ok, false, 0, false, http.StatusOK, false},
		{"disabled fast request under threshold", ok, false, time.Second, false, http.StatusOK, false},
		{"disabled slow request over threshold", slow, false, time.Millisecond, false, http.StatusOK, true},
		{"disabled server error logged", broken, false, 0, true, http.StatusInternalServerError, true},
		{"disabled server error not logged", broken, false, 0, false, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			handler := RequestLoggerMiddleware(logger, &enabled, tt.slowQueriesThreshold, tt.log5xxErrors)(tt.handler)

			req := httptest.NewRequest(http.MethodPost, "/stakes/deposits", strings.NewReader(`{"amount":1}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			require.NotEmpty(t, logger.loggedData)
			assert.Contains(t, logger.loggedData, "/stakes/deposits")
			assert.Contains(t, logger.loggedData, tt.expectedStatusCode)
			assert.Contains(t, logger.loggedData, `{"amount":1}`)
		})
	}

	// the body reaches the wrapped handler untouched
	var enabled atomic.Bool
	enabled.Store(true)
	rr := httptest.NewRecorder()
	RequestLoggerMiddleware(&mockLogger{}, &enabled, 0, false)(http.HandlerFunc(ok)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("payload")))
	assert.Equal(t, "payload", rr.Body.String())
}
