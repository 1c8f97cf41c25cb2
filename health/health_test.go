// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/memledger"
)

func TestHealth_Status(t *testing.T) {
	h := New(2)

	status := h.Status()
	assert.True(t, status.Healthy)
	assert.Nil(t, status.Ledger.LastTransfer)
	assert.Nil(t, status.Ledger.LastFailure)

	h.TransferFailed(errors.New("down"))
	assert.True(t, h.Status().Healthy)

	h.TransferFailed(errors.New("still down"))
	status = h.Status()
	assert.False(t, status.Healthy)
	assert.Equal(t, 2, status.Ledger.ConsecutiveFailures)
	assert.Equal(t, "still down", status.Ledger.LastError)
	assert.NotNil(t, status.Ledger.LastFailure)

	h.TransferSucceeded()
	status = h.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, 0, status.Ledger.ConsecutiveFailures)
	assert.NotNil(t, status.Ledger.LastTransfer)
}

func TestHealth_Observe(t *testing.T) {
	alice := transfer.Account{Owner: pool.Address{1}}
	l, err := memledger.New(&memledger.Genesis{
		Custody:  transfer.Account{Owner: pool.Address{0xc0}},
		Balances: []memledger.Allocation{{Account: alice, Amount: 10}},
	})
	require.NoError(t, err)

	h := New(1)
	observed := h.Observe(l)

	_, err = observed.TransferFrom(context.Background(), alice, 5)
	require.NoError(t, err)
	assert.True(t, h.Status().Healthy)

	_, err = observed.TransferFrom(context.Background(), alice, 50)
	assert.ErrorIs(t, err, memledger.ErrInsufficientFunds)
	assert.False(t, h.Status().Healthy)

	_, err = observed.TransferTo(context.Background(), alice, 5)
	require.NoError(t, err)
	assert.True(t, h.Status().Healthy)
	assert.Equal(t, uint64(10), l.Balance(alice))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = observed.TransferTo(ctx, alice, 1)
	assert.Error(t, err)
	assert.True(t, h.Status().Healthy)
}
