// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/health"
)

func TestHealth(t *testing.T) {
	h := health.New(1)
	router := mux.NewRouter()
	New(h).Mount(router, "/admin/health")

	get := func() (*health.Status, int) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/health", nil))
		var status health.Status
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
		return &status, rr.Code
	}

	status, code := get()
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, status.Healthy)

	h.TransferFailed(errors.New("ledger down"))
	status, code = get()
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, status.Healthy)
	assert.Equal(t, "ledger down", status.Ledger.LastError)
}
