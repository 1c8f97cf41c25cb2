// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"slices"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker/index"
	"github.com/vechain/stakepool/staker/ledger"
)

// Reasons reported by Verify.
const (
	ReasonBalanceMismatch = "balance does not match deposits"
	ReasonEmptyList       = "empty deposit list stored"
	ReasonDuplicateID     = "duplicate deposit id"
	ReasonIDOutOfRange    = "deposit id beyond counter"
	ReasonLockPeriod      = "invalid lock period"
)

// Mismatch is an account breaking a store invariant.
type Mismatch struct {
	Key        pool.AccountKey
	Balance    uint64
	DepositSum *uint256.Int
	Reason     string
}

// Report is the outcome of Verify.
type Report struct {
	Accounts      int
	Deposits      int
	TotalStake    *uint256.Int
	LastDepositID uint64
	Mismatches    []Mismatch
}

// OK returns whether no invariant is broken.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify scans the whole store and reports every account whose stake balance
// differs from the sum of its deposits, along with malformed deposits.
// progress, if not nil, is called with the number of checked accounts and
// the number of accounts to check. Operations are blocked while it runs.
func (s *Staker) Verify(progress func(done, total int)) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.counter.Last()
	if err != nil {
		return nil, err
	}
	count, err := s.ledger.Count()
	if err != nil {
		return nil, err
	}

	report := &Report{
		TotalStake:    new(uint256.Int),
		LastDepositID: last,
	}
	var (
		sums = make(map[pool.AccountKey]*uint256.Int)
		seen = make(map[uint64]struct{})
		done = 0
	)
	if progress != nil {
		progress(0, count)
	}
	err = s.ledger.Iterate(func(e ledger.Entry) error {
		sum := new(uint256.Int)
		if len(e.Deposits) == 0 {
			report.Mismatches = append(report.Mismatches, Mismatch{Key: e.Key, DepositSum: new(uint256.Int), Reason: ReasonEmptyList})
		}
		for _, d := range e.Deposits {
			sum.Add(sum, uint256.NewInt(d.Amount))
			report.Deposits++

			if _, dup := seen[d.ID]; dup {
				report.Mismatches = append(report.Mismatches, Mismatch{Key: e.Key, DepositSum: sum.Clone(), Reason: ReasonDuplicateID})
			}
			seen[d.ID] = struct{}{}
			if d.ID == 0 || d.ID > last {
				report.Mismatches = append(report.Mismatches, Mismatch{Key: e.Key, DepositSum: sum.Clone(), Reason: ReasonIDOutOfRange})
			}
			if !pool.IsValidLockPeriod(d.LockPeriodDays) {
				report.Mismatches = append(report.Mismatches, Mismatch{Key: e.Key, DepositSum: sum.Clone(), Reason: ReasonLockPeriod})
			}
		}
		sums[e.Key] = sum

		done++
		if progress != nil {
			progress(done, count)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	balances := make(map[pool.AccountKey]uint64)
	err = s.index.Iterate(func(st index.Stake) error {
		balances[st.Key] = st.Amount
		report.TotalStake.Add(report.TotalStake, uint256.NewInt(st.Amount))
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := make([]pool.AccountKey, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	for key := range balances {
		if _, ok := sums[key]; !ok {
			keys = append(keys, key)
		}
	}
	slices.SortFunc(keys, pool.AccountKey.Compare)
	report.Accounts = len(keys)

	for _, key := range keys {
		sum, ok := sums[key]
		if !ok {
			sum = new(uint256.Int)
		}
		balance := balances[key]
		if !sum.Eq(uint256.NewInt(balance)) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Key:        key,
				Balance:    balance,
				DepositSum: sum,
				Reason:     ReasonBalanceMismatch,
			})
		}
	}
	return report, nil
}
