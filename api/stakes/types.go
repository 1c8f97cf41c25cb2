// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker"
)

// DepositRequest is the body of a deposit. A missing subaccount is the zero one.
type DepositRequest struct {
	Subaccount     *pool.Bytes32        `json:"subaccount"`
	LockPeriodDays uint16               `json:"lockPeriodDays"`
	Amount         *math.HexOrDecimal64 `json:"amount"`
}

// WithdrawRequest is the body of a withdrawal.
type WithdrawRequest struct {
	Subaccount *pool.Bytes32 `json:"subaccount"`
	DepositID  uint64        `json:"depositId"`
}

type Deposit struct {
	Subaccount     pool.Bytes32 `json:"subaccount"`
	ID             uint64       `json:"id"`
	Amount         uint64       `json:"amount"`
	CreatedAt      uint64       `json:"createdAt"`
	LockPeriodDays uint16       `json:"lockPeriodDays"`
	UnlockTime     uint64       `json:"unlockTime"`
}

type Withdrawal struct {
	Subaccount pool.Bytes32 `json:"subaccount"`
	DepositID  uint64       `json:"depositId"`
	Amount     uint64       `json:"amount"`
}

type Balance struct {
	Owner      pool.Address `json:"owner"`
	Subaccount pool.Bytes32 `json:"subaccount"`
	Balance    uint64       `json:"balance"`
}

// Total carries the total stake in decimal, as it may exceed 64 bits.
type Total struct {
	Total string `json:"total"`
}

func convertDeposit(sub pool.Bytes32, d *pool.Deposit) *Deposit {
	return &Deposit{
		Subaccount:     sub,
		ID:             d.ID,
		Amount:         d.Amount,
		CreatedAt:      d.CreatedAt,
		LockPeriodDays: d.LockPeriodDays,
		UnlockTime:     d.UnlockTime(),
	}
}

func convertOwned(owned []staker.OwnedDeposit) []*Deposit {
	deposits := make([]*Deposit, 0, len(owned))
	for i := range owned {
		deposits = append(deposits, convertDeposit(owned[i].Sub, &owned[i].Deposit))
	}
	return deposits
}

func subOrZero(sub *pool.Bytes32) pool.Bytes32 {
	if sub == nil {
		return pool.Bytes32{}
	}
	return *sub
}
