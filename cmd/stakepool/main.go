// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakepool runs the staking pool service.
package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/health"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/metrics"
	"github.com/vechain/stakepool/staker"
)

var (
	version       string
	gitCommit     string
	gitTag        string
	copyrightYear string

	logger = log.WithContext("pkg", "main")

	defaultFlags = []cli.Flag{
		dataDirFlag,
		inMemoryFlag,
		cacheFlag,
		depositCacheFlag,
		apiAddrFlag,
		apiCorsFlag,
		apiTimeoutFlag,
		apiJournalLimitFlag,
		apiAuthFlag,
		enableAPILogsFlag,
		apiSlowQueriesThresholdFlag,
		apiLog5xxErrorsFlag,
		pprofFlag,
		ledgerURLFlag,
		ledgerGenesisFlag,
		ledgerTimeoutFlag,
		ntpHostFlag,
		verbosityFlag,
		jsonLogsFlag,
		enableMetricsFlag,
		metricsAddrFlag,
		enableAdminFlag,
		adminAddrFlag,
	}
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakepool",
		Usage:     "Staking pool accounting service",
		Copyright: fmt.Sprintf("2025-%s VeChain Foundation <https://vechain.org/>", copyrightYear),
		Flags:     defaultFlags,
		Action:    defaultAction,
		Commands: []cli.Command{
			{
				Name:  "verify",
				Usage: "check every stake balance against the deposits it is made of",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: verifyAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()

	defer func() { logger.Info("exited") }()

	logLevel, err := initLogger(ctx)
	if err != nil {
		return err
	}

	checkClock(ctx)

	dataDir := "Memory"
	if !ctx.Bool(inMemoryFlag.Name) {
		if dataDir, err = makeDataDir(ctx); err != nil {
			return err
		}
	}

	store, err := openStore(ctx, dataDir, false)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing stake database..."); store.Close() }()

	journal, err := openJournal(dataDir)
	if err != nil {
		return err
	}
	defer func() { logger.Info("closing journal..."); journal.Close() }()

	ledger, err := selectLedger(ctx)
	if err != nil {
		return err
	}

	resolver, err := selectResolver(ctx)
	if err != nil {
		return err
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := api.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		metricsURL = url
		defer func() { logger.Info("stopping metrics server..."); closeFunc() }()
	}

	healthStatus := health.New(health.DefaultMaxFailures)

	s, err := staker.New(store, healthStatus.Observe(ledger.transfers), staker.Options{
		CacheSize: ctx.Int(depositCacheFlag.Name),
		Recorder:  journal,
		Clock:     clock.System{},
	})
	if err != nil {
		return errors.Wrap(err, "init staker")
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), logLevel, apiLogs, healthStatus, ledger.adminLedger())
		if err != nil {
			return fmt.Errorf("unable to start admin server - %w", err)
		}
		adminURL = url
		defer func() { logger.Info("stopping admin server..."); closeFunc() }()
	}

	handler := api.New(s, journal, resolver, clock.System{}, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		JournalLimit:         ctx.Uint64(apiJournalLimitFlag.Name),
	})
	apiURL, stopAPI, err := api.Serve(
		ctx.String(apiAddrFlag.Name),
		handler,
		time.Duration(ctx.Uint64(apiTimeoutFlag.Name))*time.Millisecond,
	)
	if err != nil {
		return err
	}
	defer func() { logger.Info("stopping API server..."); stopAPI() }()

	printStartupMessage(dataDir, ledger, apiURL, metricsURL, adminURL)

	<-exitSignal.Done()
	return nil
}
