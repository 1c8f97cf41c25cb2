// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/admin/apilogs"
	"github.com/vechain/stakepool/api/admin/loglevel"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/httpledger"

	healthAPI "github.com/vechain/stakepool/api/admin/health"
)

// New returns the admin handler serving under /admin. A non-nil ledger is
// exposed under /admin/ledger, which only makes sense for the solo ledger.
func New(logLevel *slog.LevelVar, apiLogs *atomic.Bool, healthStatus *health.Health, ledger transfer.Ledger) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(logLevel).Mount(sub, "/loglevel")
	apilogs.New(apiLogs).Mount(sub, "/apilogs")
	healthAPI.New(healthStatus).Mount(sub, "/health")
	if ledger != nil {
		httpledger.Mount(sub, "/ledger", ledger)
	}

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
