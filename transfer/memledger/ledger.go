// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memledger is an in-memory token ledger holding the pool's custody
// account. It backs solo mode and tests.
package memledger

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
)

var logger = log.WithContext("pkg", "memledger")

// Op names a ledger operation.
type Op string

const (
	OpTransferFrom Op = "transfer_from"
	OpTransferTo   Op = "transfer"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// Hook runs before a transfer is applied. A non-nil error fails the transfer
// without moving funds. Hooks run without the ledger lock held and may block.
type Hook func(ctx context.Context, op Op, acc transfer.Account, amount uint64) error

// Ledger is an in-memory transfer.Ledger.
type Ledger struct {
	mu       sync.Mutex
	custody  pool.AccountKey
	balances map[pool.AccountKey]uint64
	index    uint64
	hook     Hook
}

var _ transfer.Ledger = (*Ledger)(nil)

// New creates a ledger from the genesis allocation.
func New(g *Genesis) (*Ledger, error) {
	l := &Ledger{
		custody:  g.Custody.Key(),
		balances: make(map[pool.AccountKey]uint64),
	}
	for _, alloc := range g.Balances {
		if err := l.credit(alloc.Account.Key(), alloc.Amount); err != nil {
			return nil, errors.Wrapf(err, "genesis balance of %v", alloc.Account)
		}
	}
	return l, nil
}

// SetHook installs h, replacing any previous hook. A nil h removes it.
func (l *Ledger) SetHook(h Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hook = h
}

// FailNext makes the next transfer of kind op fail with err.
func (l *Ledger) FailNext(op Op, err error) {
	var once sync.Once
	l.SetHook(func(_ context.Context, o Op, _ transfer.Account, _ uint64) (res error) {
		if o != op {
			return nil
		}
		once.Do(func() { res = err })
		return
	})
}

// Custody returns the pool's custody account. A zero sub-identity is
// returned as nil, the way genesis files leave it out.
func (l *Ledger) Custody() transfer.Account {
	acc := transfer.Account{Owner: l.custody.Owner}
	if l.custody.Sub != (pool.Bytes32{}) {
		sub := l.custody.Sub
		acc.Sub = &sub
	}
	return acc
}

// Balance returns the balance of acc.
func (l *Ledger) Balance(acc transfer.Account) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[acc.Key()]
}

// Mint credits acc with amount out of thin air.
func (l *Ledger) Mint(acc transfer.Account, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.credit(acc.Key(), amount)
}

// TransferFrom implements transfer.Ledger.
func (l *Ledger) TransferFrom(ctx context.Context, payer transfer.Account, amount uint64) (uint64, error) {
	return l.move(ctx, OpTransferFrom, payer, payer.Key(), l.custody, amount)
}

// TransferTo implements transfer.Ledger.
func (l *Ledger) TransferTo(ctx context.Context, payee transfer.Account, amount uint64) (uint64, error) {
	return l.move(ctx, OpTransferTo, payee, l.custody, payee.Key(), amount)
}

func (l *Ledger) move(ctx context.Context, op Op, acc transfer.Account, from, to pool.AccountKey, amount uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	l.mu.Lock()
	hook := l.hook
	l.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, op, acc, amount); err != nil {
			return 0, err
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[from] < amount {
		return 0, ErrInsufficientFunds
	}
	if from != to && l.balances[to] > math.MaxUint64-amount {
		return 0, ErrBalanceOverflow
	}
	l.debit(from, amount)
	if err := l.credit(to, amount); err != nil {
		return 0, err
	}
	l.index++

	logger.Trace("transfer applied", "op", op, "from", from, "to", to, "amount", amount, "index", l.index)
	return l.index, nil
}

func (l *Ledger) credit(key pool.AccountKey, amount uint64) error {
	bal := l.balances[key]
	if bal > math.MaxUint64-amount {
		return ErrBalanceOverflow
	}
	if bal+amount > 0 {
		l.balances[key] = bal + amount
	}
	return nil
}

func (l *Ledger) debit(key pool.AccountKey, amount uint64) {
	if bal := l.balances[key] - amount; bal == 0 {
		delete(l.balances, key)
	} else {
		l.balances[key] = bal
	}
}
