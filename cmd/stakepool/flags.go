// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/log"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the stake and journal databases",
	}
	inMemoryFlag = cli.BoolFlag{
		Name:  "in-memory",
		Usage: "keep all state in memory, nothing is persisted",
	}
	cacheFlag = cli.Uint64Flag{
		Name:  "cache",
		Usage: "megabytes of ram allocated to the stake database",
		Value: 256,
	}
	depositCacheFlag = cli.IntFlag{
		Name:  "deposit-cache",
		Usage: "number of deposit lists kept in memory",
		Value: 4096,
	}

	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8680",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiTimeoutFlag = cli.Uint64Flag{
		Name:  "api-timeout",
		Value: 10000,
		Usage: "API request timeout value in milliseconds",
	}
	apiJournalLimitFlag = cli.Uint64Flag{
		Name:  "api-journal-limit",
		Value: 1000,
		Usage: "limit the number of records returned by /journal API",
	}
	apiAuthFlag = cli.StringFlag{
		Name:  "api-auth",
		Value: "signature",
		Usage: "how API callers are identified (signature|header), header trusts the x-stakepool-caller header",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Value: 0,
		Usage: "all queries with execution time(ms) above threshold will be logged",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all requests answered with a server error",
	}
	pprofFlag = cli.BoolFlag{
		Name:  "pprof",
		Usage: "turn on go-pprof",
	}

	ledgerURLFlag = cli.StringFlag{
		Name:  "ledger-url",
		Usage: "URL of the remote token ledger, an in-memory ledger is used if not set",
	}
	ledgerGenesisFlag = cli.StringFlag{
		Name:  "ledger-genesis",
		Usage: "YAML genesis file of the in-memory ledger, dev accounts are funded if not set",
	}
	ledgerTimeoutFlag = cli.Uint64Flag{
		Name:  "ledger-timeout",
		Value: 10000,
		Usage: "remote ledger request timeout value in milliseconds",
	}

	ntpHostFlag = cli.StringFlag{
		Name:  "ntp-host",
		Value: "pool.ntp.org",
		Usage: "NTP server used to check the local clock at startup, empty to skip",
	}

	verbosityFlag = cli.Uint64Flag{
		Name:  "verbosity",
		Value: log.LegacyLevelInfo,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}

	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
	enableAdminFlag = cli.BoolFlag{
		Name:  "enable-admin",
		Usage: "enables admin server",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Value: "localhost:2113",
		Usage: "admin service listening address",
	}
)
