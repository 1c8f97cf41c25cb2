// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidLockPeriod(t *testing.T) {
	for _, days := range []uint16{90, 180, 360} {
		assert.True(t, IsValidLockPeriod(days), days)
	}
	for _, days := range []uint16{0, 1, 89, 91, 179, 181, 359, 361, 720} {
		assert.False(t, IsValidLockPeriod(days), days)
	}
}

func TestDepositUnlock(t *testing.T) {
	d := &Deposit{ID: 1, Amount: 10, CreatedAt: 1_000, LockPeriodDays: 90}

	assert.Equal(t, uint64(1_000+90*86400), d.UnlockTime())
	assert.False(t, d.Unlocked(d.UnlockTime()-1))
	assert.True(t, d.Unlocked(d.UnlockTime()))
	assert.True(t, d.Unlocked(d.UnlockTime()+1))
}

func TestDepositUnlockSaturates(t *testing.T) {
	d := &Deposit{CreatedAt: math.MaxUint64 - 10, LockPeriodDays: 90}
	assert.Equal(t, uint64(math.MaxUint64), d.UnlockTime())
	assert.False(t, d.Unlocked(0))
	assert.False(t, d.Unlocked(math.MaxUint64-1))
	assert.True(t, d.Unlocked(math.MaxUint64))

	d = &Deposit{CreatedAt: math.MaxUint64 - 90*SecondsPerDay, LockPeriodDays: 90}
	assert.Equal(t, uint64(math.MaxUint64), d.UnlockTime())
}

func TestDepositListRemove(t *testing.T) {
	list := DepositList{
		{ID: 1, Amount: 1},
		{ID: 2, Amount: 2},
		{ID: 3, Amount: 3},
	}

	assert.Equal(t, 1, list.Find(2))
	assert.Equal(t, -1, list.Find(4))

	out := list.Remove(1)
	assert.Equal(t, []uint64{1, 3}, []uint64{out[0].ID, out[1].ID})
	assert.Len(t, list, 3, "source list must stay intact")
	assert.Equal(t, uint64(4), out.Sum())
	assert.Equal(t, uint64(6), list.Sum())
}
