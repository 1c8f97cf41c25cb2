// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health tracks whether the token ledger is reachable, judged by the
// outcome of the transfers made through it.
package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vechain/stakepool/transfer"
)

// DefaultMaxFailures is the number of consecutive failed transfers after
// which the service reports unhealthy.
const DefaultMaxFailures = 3

type LedgerStatus struct {
	LastTransfer        *time.Time `json:"lastTransfer"`
	LastFailure         *time.Time `json:"lastFailure"`
	LastError           string     `json:"lastError,omitempty"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
}

type Status struct {
	Healthy bool          `json:"healthy"`
	Ledger  *LedgerStatus `json:"ledger"`
}

type Health struct {
	lock        sync.RWMutex
	maxFailures int

	lastTransfer time.Time
	lastFailure  time.Time
	lastError    string
	failures     int
}

func New(maxFailures int) *Health {
	return &Health{maxFailures: maxFailures}
}

// TransferSucceeded records a completed transfer.
func (h *Health) TransferSucceeded() {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastTransfer = time.Now()
	h.failures = 0
}

// TransferFailed records a failed transfer.
func (h *Health) TransferFailed(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastFailure = time.Now()
	h.lastError = err.Error()
	h.failures++
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	ledger := &LedgerStatus{
		LastError:           h.lastError,
		ConsecutiveFailures: h.failures,
	}
	if !h.lastTransfer.IsZero() {
		t := h.lastTransfer
		ledger.LastTransfer = &t
	}
	if !h.lastFailure.IsZero() {
		t := h.lastFailure
		ledger.LastFailure = &t
	}

	return &Status{
		Healthy: h.failures < h.maxFailures,
		Ledger:  ledger,
	}
}

// Observe returns l reporting the outcome of every transfer to h.
func (h *Health) Observe(l transfer.Ledger) transfer.Ledger {
	return &observedLedger{Ledger: l, h: h}
}

type observedLedger struct {
	transfer.Ledger
	h *Health
}

func (o *observedLedger) record(err error) {
	// a cancelled request says nothing about the ledger
	if err == nil {
		o.h.TransferSucceeded()
	} else if !errors.Is(err, context.Canceled) {
		o.h.TransferFailed(err)
	}
}

func (o *observedLedger) TransferFrom(ctx context.Context, payer transfer.Account, amount uint64) (uint64, error) {
	index, err := o.Ledger.TransferFrom(ctx, payer, amount)
	o.record(err)
	return index, err
}

func (o *observedLedger) TransferTo(ctx context.Context, payee transfer.Account, amount uint64) (uint64, error) {
	index, err := o.Ledger.TransferTo(ctx, payee, amount)
	o.record(err)
	return index, err
}
