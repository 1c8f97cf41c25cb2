// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/pool"
)

// OwnedDeposit is a deposit together with the sub-identity holding it.
type OwnedDeposit struct {
	Sub     pool.Bytes32 `json:"subaccount"`
	Deposit pool.Deposit `json:"deposit"`
}

// Deposits lists every active deposit of owner, ordered by sub-identity and
// then by deposit order.
func (s *Staker) Deposits(owner pool.Address) ([]OwnedDeposit, error) {
	s.mu.Lock()
	entries, err := s.ledger.Owned(owner)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	owned := make([]OwnedDeposit, 0, len(entries))
	for _, e := range entries {
		for _, d := range e.Deposits {
			owned = append(owned, OwnedDeposit{Sub: e.Key.Sub, Deposit: *d})
		}
	}
	return owned, nil
}

// StakeBalance returns the active stake of key.
func (s *Staker) StakeBalance(key pool.AccountKey) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.index.Get(key)
}

// TotalStake returns the sum of all stake balances.
func (s *Staker) TotalStake() (*uint256.Int, error) {
	s.mu.Lock()
	_, total, err := s.index.Snapshot()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	observeTotal(total)
	return total, nil
}

// LastDepositID returns the most recently allocated deposit id, 0 if none.
func (s *Staker) LastDepositID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.counter.Last()
}
