// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
)

// Deposit pulls amount from the external account of key and records it as a
// deposit locked for lockPeriodDays from now.
func (s *Staker) Deposit(
	ctx context.Context,
	key pool.AccountKey,
	lockPeriodDays uint16,
	amount uint64,
	now uint64,
) (*pool.Deposit, error) {
	if !pool.IsValidLockPeriod(lockPeriodDays) {
		return nil, ErrInvalidLockPeriod
	}

	s.mu.Lock()
	balance, err := s.index.Get(key)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if balance > math.MaxUint64-amount {
		return nil, ErrStakeOverflow
	}

	if _, err := s.transfers.TransferFrom(ctx, transfer.AccountOf(key), amount); err != nil {
		return nil, transferFailed("transfer_from", err)
	}

	s.mu.Lock()
	deposit, err := s.addDeposit(key, lockPeriodDays, amount, now)
	s.mu.Unlock()
	if err != nil {
		s.refund(ctx, key, amount)
		return nil, err
	}

	metricDeposits().Add(1)
	logger.Debug("deposit added", "key", key, "id", deposit.ID, "amount", amount, "lockPeriodDays", lockPeriodDays)
	return deposit, nil
}

// addDeposit must be called with the lock held.
func (s *Staker) addDeposit(key pool.AccountKey, lockPeriodDays uint16, amount uint64, now uint64) (*pool.Deposit, error) {
	balance, err := s.index.Get(key)
	if err != nil {
		return nil, err
	}
	// another deposit may have landed while the funds were pulled
	if balance > math.MaxUint64-amount {
		return nil, ErrStakeOverflow
	}
	deposits, err := s.ledger.Get(key)
	if err != nil {
		return nil, err
	}

	id, err := s.counter.Next()
	if err != nil {
		return nil, err
	}
	deposit := &pool.Deposit{
		ID:             id,
		Amount:         amount,
		CreatedAt:      now,
		LockPeriodDays: lockPeriodDays,
	}

	updated := make(pool.DepositList, 0, len(deposits)+1)
	updated = append(updated, deposits...)
	updated = append(updated, deposit)

	bulk := s.store.Bulk()
	if err := s.ledger.Stage(bulk, key, updated); err != nil {
		return nil, err
	}
	if err := s.index.Stage(bulk, key, balance+amount); err != nil {
		return nil, err
	}
	if err := bulk.Write(); err != nil {
		return nil, errors.Wrap(err, "failed to commit deposit")
	}
	s.ledger.Committed(key, updated)

	copied := *deposit
	return &copied, nil
}

// refund returns pulled funds that could not be recorded as a deposit.
func (s *Staker) refund(ctx context.Context, key pool.AccountKey, amount uint64) {
	if amount == 0 {
		return
	}
	if _, err := s.transfers.TransferTo(context.WithoutCancel(ctx), transfer.AccountOf(key), amount); err != nil {
		metricTransferFailures().AddWithLabel(1, map[string]string{"op": "refund"})
		logger.Warn("failed to refund unrecorded deposit", "key", key, "amount", amount, "err", err)
		s.recorder.recordUnreturned(ctx, &journal.Unreturned{
			Owner:     key.Owner,
			Sub:       key.Sub,
			Amount:    amount,
			Err:       err.Error(),
			CreatedAt: s.clock.Now(),
		})
	}
}
