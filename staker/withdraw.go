// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
)

// Withdraw removes an unlocked deposit of key and returns its amount to the
// external account of key.
//
// The deposit is removed before the funds are sent, and the return transfer
// is not cancelled with ctx. When the transfer fails
// the deposit stays removed, the error matches ErrLedgerTransferFailed and
// the withdrawal is recorded as unreturned.
func (s *Staker) Withdraw(ctx context.Context, key pool.AccountKey, depositID uint64, now uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	deposit, err := s.removeDeposit(key, depositID, now)
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	metricWithdrawals().Add(1)

	// the deposit is gone, cancelling the caller must not stop the return
	if _, err := s.transfers.TransferTo(context.WithoutCancel(ctx), transfer.AccountOf(key), deposit.Amount); err != nil {
		logger.Warn("withdrawn deposit not returned", "key", key, "id", depositID, "amount", deposit.Amount, "err", err)
		s.recorder.recordUnreturned(ctx, &journal.Unreturned{
			Owner:     key.Owner,
			Sub:       key.Sub,
			DepositID: depositID,
			Amount:    deposit.Amount,
			Err:       err.Error(),
			CreatedAt: s.clock.Now(),
		})
		return 0, transferFailed("transfer", err)
	}

	logger.Debug("deposit withdrawn", "key", key, "id", depositID, "amount", deposit.Amount)
	return deposit.Amount, nil
}

// removeDeposit must be called with the lock held.
func (s *Staker) removeDeposit(key pool.AccountKey, depositID uint64, now uint64) (*pool.Deposit, error) {
	deposits, err := s.ledger.Get(key)
	if err != nil {
		return nil, err
	}
	i := deposits.Find(depositID)
	if i < 0 {
		return nil, ErrNoDepositFound
	}
	deposit := *deposits[i]
	if !deposit.Unlocked(now) {
		return nil, ErrLockPeriodNotExpired
	}

	balance, err := s.index.Get(key)
	if err != nil {
		return nil, err
	}
	if balance < deposit.Amount {
		logger.Warn("stake balance below deposit", "key", key, "balance", balance, "amount", deposit.Amount)
		balance = deposit.Amount
	}

	updated := deposits.Remove(i)
	bulk := s.store.Bulk()
	if err := s.ledger.Stage(bulk, key, updated); err != nil {
		return nil, err
	}
	if err := s.index.Stage(bulk, key, balance-deposit.Amount); err != nil {
		return nil, err
	}
	if err := bulk.Write(); err != nil {
		return nil, errors.Wrap(err, "failed to commit withdrawal")
	}
	s.ledger.Committed(key, updated)
	return &deposit, nil
}
