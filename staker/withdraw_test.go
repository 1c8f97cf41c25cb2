// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/staker/reverts"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/memledger"
)

func TestWithdraw_LockPeriod(t *testing.T) {
	for _, days := range []uint16{90, 180, 360} {
		alice := key(0x0a, 0)
		env := newTestEnv(t, fund(alice, 1000))
		ctx := context.Background()

		_, err := env.staker.Deposit(ctx, alice, days, 100, genesisTime)
		require.NoError(t, err)
		before := env.dump(t)

		unlock := genesisTime + uint64(days)*day
		for _, now := range []uint64{genesisTime, genesisTime + 1, unlock - 1} {
			_, err := env.staker.Withdraw(ctx, alice, 1, now)
			assert.ErrorIs(t, err, ErrLockPeriodNotExpired)
			assert.True(t, reverts.IsRevertErr(err))
		}
		assert.Equal(t, before, env.dump(t))

		amount, err := env.staker.Withdraw(ctx, alice, 1, unlock)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), amount)
		assert.Equal(t, uint64(1000), env.ledger.Balance(transfer.AccountOf(alice)))

		balance, err := env.staker.StakeBalance(alice)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), balance)
		assert.Empty(t, env.dump(t)["d"+string(alice.Bytes())], "empty list removed")
	}
}

func TestWithdraw_NoDepositFound(t *testing.T) {
	alice, bob := key(0x0a, 0), key(0x0b, 0)
	env := newTestEnv(t, fund(alice, 1000))
	ctx := context.Background()
	later := genesisTime + 1000*day

	_, err := env.staker.Withdraw(ctx, alice, 1, later)
	assert.ErrorIs(t, err, ErrNoDepositFound, "unknown account")

	_, err = env.staker.Deposit(ctx, alice, 90, 100, genesisTime)
	require.NoError(t, err)

	_, err = env.staker.Withdraw(ctx, alice, 2, later)
	assert.ErrorIs(t, err, ErrNoDepositFound, "unknown id")

	_, err = env.staker.Withdraw(ctx, bob, 1, later)
	assert.ErrorIs(t, err, ErrNoDepositFound, "deposit of another account")

	_, err = env.staker.Withdraw(ctx, key(0x0a, 1), 1, later)
	assert.ErrorIs(t, err, ErrNoDepositFound, "deposit of another sub-identity")

	_, err = env.staker.Withdraw(ctx, alice, 1, later)
	require.NoError(t, err)

	_, err = env.staker.Withdraw(ctx, alice, 1, later)
	assert.ErrorIs(t, err, ErrNoDepositFound, "already withdrawn")
}

func TestWithdraw_KeepsOrder(t *testing.T) {
	alice := key(0x0a, 0)
	env := newTestEnv(t, fund(alice, 1000))
	ctx := context.Background()

	for i, amount := range []uint64{10, 20, 30, 40} {
		_, err := env.staker.Deposit(ctx, alice, 90, amount, genesisTime+uint64(i))
		require.NoError(t, err)
	}

	amount, err := env.staker.Withdraw(ctx, alice, 2, genesisTime+90*day+1)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), amount)

	owned, err := env.staker.Deposits(alice.Owner)
	require.NoError(t, err)
	var ids []uint64
	for _, o := range owned {
		ids = append(ids, o.Deposit.ID)
	}
	assert.Equal(t, []uint64{1, 3, 4}, ids)

	balance, err := env.staker.StakeBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(80), balance)
}

func TestWithdraw_ReturnFails(t *testing.T) {
	alice := key(0x0a, 0)
	env := newTestEnv(t, fund(alice, 1000))
	ctx := context.Background()

	_, err := env.staker.Deposit(ctx, alice, 90, 100, genesisTime)
	require.NoError(t, err)

	env.clock.Set(genesisTime + 90*day)
	env.ledger.FailNext(memledger.OpTransferTo, errors.New("ledger down"))

	amount, err := env.staker.Withdraw(ctx, alice, 1, env.clock.Now())
	assert.ErrorIs(t, err, ErrLedgerTransferFailed)
	assert.Zero(t, amount)

	// the deposit is not restored
	balance, err := env.staker.StakeBalance(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
	_, err = env.staker.Withdraw(ctx, alice, 1, env.clock.Now())
	assert.ErrorIs(t, err, ErrNoDepositFound)

	unreturned, err := env.journal.Unreturned(ctx, nil)
	require.NoError(t, err)
	require.Len(t, unreturned, 1)
	assert.Equal(t, alice.Owner, unreturned[0].Owner)
	assert.Equal(t, uint64(1), unreturned[0].DepositID)
	assert.Equal(t, uint64(100), unreturned[0].Amount)
	assert.Equal(t, genesisTime+90*day, unreturned[0].CreatedAt)

	env.checkInvariant(t)
}

func TestWithdraw_CancelledBeforeCommit(t *testing.T) {
	alice := key(0x0a, 0)
	env := newTestEnv(t, fund(alice, 1000))

	_, err := env.staker.Deposit(context.Background(), alice, 90, 100, genesisTime)
	require.NoError(t, err)
	before := env.dump(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	unlock := genesisTime + 90*day
	_, err = env.staker.Withdraw(ctx, alice, 1, unlock)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLedgerTransferFailed)
	assert.Equal(t, before, env.dump(t), "nothing removed")
	assert.Equal(t, uint64(900), env.ledger.Balance(transfer.AccountOf(alice)))

	amount, err := env.staker.Withdraw(context.Background(), alice, 1, unlock)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), amount)
	assert.Equal(t, uint64(1000), env.ledger.Balance(transfer.AccountOf(alice)))
}

// cancellingLedger cancels the caller once the first pull went through.
type cancellingLedger struct {
	transfer.Ledger
	cancel context.CancelFunc
}

func (l *cancellingLedger) TransferFrom(ctx context.Context, payer transfer.Account, amount uint64) (uint64, error) {
	n, err := l.Ledger.TransferFrom(ctx, payer, amount)
	l.cancel()
	return n, err
}

func TestDistributeReward_CancelledAfterPull(t *testing.T) {
	alice, bob, funder := key(0x0a, 0), key(0x0b, 0), key(0x0f, 0)
	env := newTestEnv(t, fund(alice, 1000), fund(bob, 1000), fund(funder, 1000))

	_, err := env.staker.Deposit(context.Background(), alice, 90, 100, genesisTime)
	require.NoError(t, err)
	_, err = env.staker.Deposit(context.Background(), bob, 90, 300, genesisTime)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	env.staker.transfers = &cancellingLedger{Ledger: env.ledger, cancel: cancel}

	ok, err := env.staker.DistributeReward(ctx, funder.Owner, 400)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1000), env.ledger.Balance(transfer.AccountOf(alice)))
	assert.Equal(t, uint64(1000), env.ledger.Balance(transfer.AccountOf(bob)))
}
