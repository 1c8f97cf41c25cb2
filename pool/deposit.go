// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"slices"

	gmath "github.com/ethereum/go-ethereum/common/math"
)

// SecondsPerDay is the length of a lock period day.
const SecondsPerDay = 86400

// LockPeriods lists the allowed lock periods in days.
var LockPeriods = [...]uint16{90, 180, 360}

// IsValidLockPeriod returns whether days is one of the allowed lock periods.
func IsValidLockPeriod(days uint16) bool {
	return slices.Contains(LockPeriods[:], days)
}

// Deposit is one locked position.
type Deposit struct {
	ID             uint64 `json:"id"`
	Amount         uint64 `json:"amount"`
	CreatedAt      uint64 `json:"createdAt"`
	LockPeriodDays uint16 `json:"lockPeriodDays"`
}

// UnlockTime returns the first timestamp at which the deposit can be withdrawn.
// It saturates at the maximum timestamp.
func (d *Deposit) UnlockTime() uint64 {
	t, overflow := gmath.SafeAdd(d.CreatedAt, uint64(d.LockPeriodDays)*SecondsPerDay)
	if overflow {
		return math.MaxUint64
	}
	return t
}

// Unlocked returns whether the deposit is withdrawable at now.
func (d *Deposit) Unlocked(now uint64) bool {
	return now >= d.UnlockTime()
}

// DepositList is the ordered list of active deposits of one account.
type DepositList []*Deposit

// Find returns the position of the deposit with the given id, or -1.
func (l DepositList) Find(id uint64) int {
	return slices.IndexFunc(l, func(d *Deposit) bool { return d.ID == id })
}

// Remove returns a new list without the entry at i. The receiver is left untouched.
func (l DepositList) Remove(i int) DepositList {
	out := make(DepositList, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...)
}

// Sum returns the total amount of the list.
func (l DepositList) Sum() uint64 {
	var sum uint64
	for _, d := range l {
		sum += d.Amount
	}
	return sum
}
