// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staker is the staking accounting engine: it records locked deposits,
// keeps the aggregate stake of every account, and shares rewards among
// stakers in proportion to their stake.
//
// Every operation reads and writes the stores while holding the staker lock,
// and releases it across each call to the token ledger. Other operations may
// therefore run while a transfer is in flight. A reward distribution pays
// against the stakes it observed before its first payout.
package staker

import (
	"context"
	"sync"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/staker/index"
	"github.com/vechain/stakepool/staker/ledger"
	"github.com/vechain/stakepool/transfer"
)

var logger = log.WithContext("pkg", "staker")

func SetLogger(l log.Logger) {
	logger = l
}

// DefaultCacheSize is the default number of cached deposit lists.
const DefaultCacheSize = 4096

// Recorder receives the reconciliation records of distributions and failed
// withdrawal returns. Failures to record are logged and otherwise ignored.
type Recorder interface {
	RecordDistribution(ctx context.Context, d *journal.Distribution, payouts []*journal.Payout) error
	SettlePayout(ctx context.Context, distributionID string, seq int, status journal.Status, cause string) error
	SettleDistribution(ctx context.Context, id string, status journal.Status, paid uint64) error
	RecordUnreturned(ctx context.Context, u *journal.Unreturned) error
}

var _ Recorder = (*journal.Journal)(nil)

type Options struct {
	// CacheSize is the number of cached deposit lists, DefaultCacheSize if zero.
	CacheSize int
	// Recorder may be nil.
	Recorder Recorder
	// Clock stamps journal records, the system clock if nil.
	Clock clock.Clock
}

// Staker implements the staking pool operations.
type Staker struct {
	mu sync.Mutex

	store   kv.Store
	ledger  *ledger.Service
	index   *index.Service
	counter *depositIDCounter

	transfers transfer.Ledger
	recorder  recorder
	clock     clock.Clock
}

// New creates a staker over store, moving funds through transfers.
func New(store kv.Store, transfers transfer.Ledger, opts Options) (*Staker, error) {
	if opts.CacheSize == 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	ledgerService, err := ledger.New(store, opts.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Staker{
		store:     store,
		ledger:    ledgerService,
		index:     index.New(store),
		counter:   newDepositIDCounter(store),
		transfers: transfers,
		recorder:  recorder{opts.Recorder},
		clock:     opts.Clock,
	}, nil
}

// recorder forwards to an optional Recorder, logging its failures.
type recorder struct {
	r Recorder
}

func (r recorder) recordDistribution(ctx context.Context, d *journal.Distribution, payouts []*journal.Payout) {
	if r.r == nil {
		return
	}
	if err := r.r.RecordDistribution(context.WithoutCancel(ctx), d, payouts); err != nil {
		logger.Error("failed to record distribution", "id", d.ID, "err", err)
	}
}

func (r recorder) settlePayout(ctx context.Context, id string, seq int, status journal.Status, cause error) {
	if r.r == nil {
		return
	}
	var msg string
	if cause != nil {
		msg = cause.Error()
	}
	if err := r.r.SettlePayout(context.WithoutCancel(ctx), id, seq, status, msg); err != nil {
		logger.Error("failed to record payout", "id", id, "seq", seq, "err", err)
	}
}

func (r recorder) settleDistribution(ctx context.Context, id string, status journal.Status, paid uint64) {
	if r.r == nil {
		return
	}
	if err := r.r.SettleDistribution(context.WithoutCancel(ctx), id, status, paid); err != nil {
		logger.Error("failed to record distribution outcome", "id", id, "err", err)
	}
}

func (r recorder) recordUnreturned(ctx context.Context, u *journal.Unreturned) {
	if r.r == nil {
		return
	}
	if err := r.r.RecordUnreturned(context.WithoutCancel(ctx), u); err != nil {
		logger.Error("failed to record unreturned withdrawal", "owner", u.Owner, "deposit", u.DepositID, "err", err)
	}
}
