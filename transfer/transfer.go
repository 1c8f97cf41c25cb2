// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package transfer defines the token ledger the pool moves funds through.
package transfer

import (
	"context"

	"github.com/vechain/stakepool/pool"
)

// Account is a token account: an owner plus an optional sub-identity.
// A nil Sub is the default sub-identity, equal to the all-zero one.
type Account struct {
	Owner pool.Address  `json:"owner" yaml:"owner"`
	Sub   *pool.Bytes32 `json:"subaccount,omitempty" yaml:"subaccount,omitempty"`
}

// AccountOf returns the external token account of a stake position.
func AccountOf(key pool.AccountKey) Account {
	sub := key.Sub
	return Account{Owner: key.Owner, Sub: &sub}
}

// Key returns the account as a comparable key, mapping a nil Sub to zero.
func (a Account) Key() pool.AccountKey {
	var sub pool.Bytes32
	if a.Sub != nil {
		sub = *a.Sub
	}
	return pool.NewAccountKey(a.Owner, sub)
}

func (a Account) String() string {
	return a.Key().String()
}

// Ledger moves tokens between external accounts and the pool's custody account.
// Both calls return the ledger's index of the executed transfer.
type Ledger interface {
	// TransferFrom pulls amount from payer into custody. The payer must have
	// approved the pool beforehand.
	TransferFrom(ctx context.Context, payer Account, amount uint64) (uint64, error)
	// TransferTo pays amount out of custody to payee.
	TransferTo(ctx context.Context, payee Account, amount uint64) (uint64, error)
}
