// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/httpledger"
	"github.com/vechain/stakepool/transfer/memledger"
)

// maxClockOffset is the local clock drift tolerated before warning.
const maxClockOffset = 5 * time.Second

func initLogger(ctx *cli.Context) (*slog.LevelVar, error) {
	lvl, err := readIntFromUInt64Flag(ctx.Uint64(verbosityFlag.Name))
	if err != nil {
		return nil, errors.Wrap(err, "parse verbosity flag")
	}
	logLevel := new(slog.LevelVar)
	logLevel.Set(log.FromLegacyLevel(lvl))

	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandler(os.Stdout, logLevel)
	} else {
		output := os.Stdout
		useColor := (isatty.IsTerminal(output.Fd()) || isatty.IsCygwinTerminal(output.Fd())) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandler(output, logLevel, useColor)
	}
	log.SetDefault(handler)

	return logLevel, nil
}

func checkClock(ctx *cli.Context) {
	host := ctx.String(ntpHostFlag.Name)
	if host == "" {
		return
	}
	if _, err := clock.CheckOffset(clock.NTPQuery, host, maxClockOffset); err != nil {
		logger.Debug("failed to check clock offset", "host", host, "err", err)
	}
}

func makeDataDir(ctx *cli.Context) (string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name)
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	return dataDir, nil
}

func openStore(ctx *cli.Context, dataDir string, readOnly bool) (*lvldb.LevelDB, error) {
	if ctx.Bool(inMemoryFlag.Name) {
		return lvldb.NewMem()
	}
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	logger.Debug("cache size(MB)", "size", cacheMB)

	fdCache := suggestFDCache()
	logger.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "stake.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
		ReadOnly:               readOnly,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open stake database [%v]", dir)
	}
	return db, nil
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 16 {
		sizeMB = 16
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		logger.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			logger.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		logger.Warn("failed to get fd limit", "err", err)
		return 16
	}
	if limit <= 1024 {
		logger.Warn("low fd limit, increase it if possible", "limit", limit)
	}
	return min(limit/2, 5120)
}

func openJournal(dataDir string) (*journal.Journal, error) {
	if dataDir == "Memory" {
		return journal.NewMem()
	}
	path := filepath.Join(dataDir, "journal.db")
	j, err := journal.New(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open journal [%v]", path)
	}
	return j, nil
}

// ledgerBinding is the token ledger in use. solo is set for the in-memory ledger.
type ledgerBinding struct {
	transfers transfer.Ledger
	solo      *memledger.Ledger
	genesis   *memledger.Genesis
	url       string
}

// adminLedger is the ledger exposed on the admin server, nil unless solo.
func (b *ledgerBinding) adminLedger() transfer.Ledger {
	if b.solo == nil {
		return nil
	}
	return b.solo
}

func selectLedger(ctx *cli.Context) (*ledgerBinding, error) {
	if url := ctx.String(ledgerURLFlag.Name); url != "" {
		timeout := time.Duration(ctx.Uint64(ledgerTimeoutFlag.Name)) * time.Millisecond
		return &ledgerBinding{
			transfers: httpledger.NewWithHTTP(url, &http.Client{Timeout: timeout}),
			url:       url,
		}, nil
	}

	var (
		gene *memledger.Genesis
		err  error
	)
	if path := ctx.String(ledgerGenesisFlag.Name); path != "" {
		if gene, err = memledger.LoadGenesis(path); err != nil {
			return nil, err
		}
	} else {
		gene = devGenesis()
	}
	solo, err := memledger.New(gene)
	if err != nil {
		return nil, errors.Wrap(err, "init ledger")
	}
	return &ledgerBinding{transfers: solo, solo: solo, genesis: gene}, nil
}

// devCustody holds the pooled funds of the dev ledger.
var devCustody = pool.MustParseAddress("0x0000000000000000000000000000000000005ea1")

// devAccountKeys returns the deterministic keys funded by the dev ledger.
func devAccountKeys() []*ecdsa.PrivateKey {
	keys := make([]*ecdsa.PrivateKey, 0, 5)
	for i := range 5 {
		key, err := crypto.ToECDSA(crypto.Keccak256([]byte(fmt.Sprintf("stakepool dev account %d", i))))
		if err != nil {
			panic(err)
		}
		keys = append(keys, key)
	}
	return keys
}

func devGenesis() *memledger.Genesis {
	gene := &memledger.Genesis{Custody: transfer.Account{Owner: devCustody}}
	for _, key := range devAccountKeys() {
		gene.Balances = append(gene.Balances, memledger.Allocation{
			Account: transfer.Account{Owner: pool.Address(crypto.PubkeyToAddress(key.PublicKey))},
			Amount:  1_000_000_000,
		})
	}
	return gene
}

func selectResolver(ctx *cli.Context) (identity.Resolver, error) {
	switch auth := ctx.String(apiAuthFlag.Name); auth {
	case "signature":
		return identity.NewSignatureResolver(clock.System{}), nil
	case "header":
		logger.Warn("API trusts the caller header, do not expose it publicly")
		return identity.HeaderResolver{}, nil
	default:
		return nil, fmt.Errorf("unsupported -%s value %q", apiAuthFlag.Name, auth)
	}
}

func printStartupMessage(dataDir string, ledger *ledgerBinding, apiURL, metricsURL, adminURL string) {
	ledgerInfo := ledger.url
	if ledger.solo != nil {
		ledgerInfo = fmt.Sprintf("in-memory, custody %v", ledger.solo.Custody())
	}
	fmt.Printf(`Starting %v
    Ledger       [ %v ]
    Data dir     [ %v ]
    API portal   [ %v ]
    Metrics      [ %v ]
    Admin        [ %v ]
`,
		fullVersion(),
		ledgerInfo,
		dataDir,
		apiURL,
		func() string {
			if metricsURL == "" {
				return "Disabled"
			}
			return metricsURL
		}(),
		func() string {
			if adminURL == "" {
				return "Disabled"
			}
			return adminURL
		}(),
	)

	if ledger.solo != nil && ledger.genesis != nil {
		printBalances(ledger)
	}
}

func printBalances(ledger *ledgerBinding) {
	keys := make(map[pool.Address]*ecdsa.PrivateKey)
	for _, key := range devAccountKeys() {
		keys[pool.Address(crypto.PubkeyToAddress(key.PublicKey))] = key
	}

	fmt.Println("    Accounts")
	for _, alloc := range ledger.genesis.Balances {
		line := fmt.Sprintf("      %v  %v", alloc.Account, ledger.solo.Balance(alloc.Account))
		if key, ok := keys[alloc.Account.Owner]; ok {
			line += fmt.Sprintf("  key %x", crypto.FromECDSA(key))
		}
		fmt.Println(line)
	}
}
