// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/journal"
	"github.com/vechain/stakepool/api/middleware"
	"github.com/vechain/stakepool/api/rewards"
	"github.com/vechain/stakepool/api/stakes"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker"

	journaldb "github.com/vechain/stakepool/journal"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	PprofOn              bool
	EnableMetrics        bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	JournalLimit         uint64
}

// New return api router. The journal routes are only served when j is not nil.
func New(
	s *staker.Staker,
	j *journaldb.Journal,
	resolver identity.Resolver,
	c clock.Clock,
	opts Options,
) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	stakes.New(s, resolver, c).
		Mount(router, "/stakes")
	rewards.New(s, resolver).
		Mount(router, "/rewards")
	if j != nil {
		journal.New(j, opts.JournalLimit).
			Mount(router, "/journal")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{
			"content-type",
			identity.HeaderTimestamp,
			identity.HeaderSignature,
			identity.HeaderCaller,
		}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	return handler.ServeHTTP
}
