// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/pool"
)

var (
	alice = pool.BytesToAddress([]byte("alice"))
	bob   = pool.BytesToAddress([]byte("bob"))
)

func newJournal(t *testing.T) *Journal {
	j, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestDistributionLifecycle(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	d := &Distribution{
		ID:         NewDistributionID(),
		Source:     alice,
		Amount:     401,
		TotalStake: "400",
		Status:     StatusPending,
		Dust:       1,
		CreatedAt:  1000,
	}
	payouts := []*Payout{
		{Seq: 0, Owner: alice, Sub: pool.Bytes32{1}, Stake: 100, Reward: 100, Status: StatusPending},
		{Seq: 1, Owner: bob, Stake: 300, Reward: 300, Status: StatusPending},
	}
	require.NoError(t, j.RecordDistribution(ctx, d, payouts))

	require.NoError(t, j.SettlePayout(ctx, d.ID, 0, StatusPaid, ""))
	require.NoError(t, j.SettlePayout(ctx, d.ID, 1, StatusFailed, "boom"))
	require.NoError(t, j.SettleDistribution(ctx, d.ID, StatusFailed, 100))

	got, err := j.Distribution(ctx, d.ID)
	require.NoError(t, err)
	want := *d
	want.Status = StatusFailed
	want.Paid = 100
	assert.Equal(t, &want, got)

	ps, err := j.Payouts(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, &Payout{DistributionID: d.ID, Seq: 0, Owner: alice, Sub: pool.Bytes32{1}, Stake: 100, Reward: 100, Status: StatusPaid}, ps[0])
	assert.Equal(t, StatusFailed, ps[1].Status)
	assert.Equal(t, "boom", ps[1].Err)

	assert.Error(t, j.SettlePayout(ctx, d.ID, 2, StatusPaid, ""), "unknown payout")
	assert.Error(t, j.SettleDistribution(ctx, "nope", StatusCompleted, 0), "unknown distribution")

	none, err := j.Distribution(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDistributionsFilter(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	for i, d := range []*Distribution{
		{Source: alice, Amount: 1, Status: StatusCompleted, CreatedAt: 10},
		{Source: bob, Amount: 2, Status: StatusHeld, Held: 2, CreatedAt: 20},
		{Source: alice, Amount: math.MaxUint64, Status: StatusHeld, Held: math.MaxUint64, CreatedAt: 30},
	} {
		d.ID = NewDistributionID()
		d.TotalStake = "0"
		require.NoError(t, j.RecordDistribution(ctx, d, nil), i)
	}

	all, err := j.Distributions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, uint64(math.MaxUint64), all[2].Amount)

	held, err := j.Distributions(ctx, &Filter{Status: StatusHeld, Order: DESC})
	require.NoError(t, err)
	require.Len(t, held, 2)
	assert.Equal(t, uint64(30), held[0].CreatedAt)

	ofAlice, err := j.Distributions(ctx, &Filter{Owner: &alice, From: 5, To: 15})
	require.NoError(t, err)
	require.Len(t, ofAlice, 1)
	assert.Equal(t, uint64(1), ofAlice[0].Amount)

	page, err := j.Distributions(ctx, &Filter{Options: &Options{Offset: 1, Limit: 1}})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, bob, page[0].Source)
}

func TestUnreturned(t *testing.T) {
	j := newJournal(t)
	ctx := context.Background()

	require.NoError(t, j.RecordUnreturned(ctx, &Unreturned{Owner: alice, Sub: pool.Bytes32{2}, DepositID: 7, Amount: 50, Err: "down", CreatedAt: 100}))
	require.NoError(t, j.RecordUnreturned(ctx, &Unreturned{Owner: bob, DepositID: 8, Amount: 60, Err: "down", CreatedAt: 200}))

	all, err := j.Unreturned(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, &Unreturned{Owner: alice, Sub: pool.Bytes32{2}, DepositID: 7, Amount: 50, Err: "down", CreatedAt: 100}, all[0])

	ofBob, err := j.Unreturned(ctx, &Filter{Owner: &bob})
	require.NoError(t, err)
	require.Len(t, ofBob, 1)
	assert.Equal(t, uint64(8), ofBob[0].DepositID)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, path, j.Path())
	assert.NotEmpty(t, j.DriverVersion())
	require.NoError(t, j.RecordUnreturned(ctx, &Unreturned{Owner: alice, DepositID: 1, Amount: 1}))
	require.NoError(t, j.Close())

	j, err = New(path)
	require.NoError(t, err)
	defer j.Close()

	all, err := j.Unreturned(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNewDistributionID(t *testing.T) {
	a, b := NewDistributionID(), NewDistributionID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
