// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/admin"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/transfer"
)

// Serve serves handler on addr until the returned stop function is called.
// It returns the url the server listens on.
func Serve(addr string, handler http.Handler, timeout time.Duration) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, "request timeout")
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String(), func() {
		srv.Close()
		goes.Wait()
	}, nil
}

// StartAdminServer serves the admin api. A non-nil ledger is exposed to remote clients.
func StartAdminServer(
	addr string,
	logLevel *slog.LevelVar,
	apiLogs *atomic.Bool,
	healthStatus *health.Health,
	ledger transfer.Ledger,
) (string, func(), error) {
	url, stop, err := Serve(addr, admin.New(logLevel, apiLogs, healthStatus, ledger), 0)
	if err != nil {
		return "", nil, errors.WithMessage(err, "admin")
	}
	return url + "/admin", stop, nil
}

// StartMetricsServer serves the prometheus metrics under /metrics.
func StartMetricsServer(addr string) (string, func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	url, stop, err := Serve(addr, mux, 0)
	if err != nil {
		return "", nil, errors.WithMessage(err, "metrics")
	}
	return url + "/metrics", stop, nil
}
