// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

import (
	"database/sql/driver"
	"fmt"

	"github.com/vechain/stakepool/pool"
)

// Status of a distribution or of one payout.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusHeld      Status = "held"

	// payout only
	StatusPaid    Status = "paid"
	StatusSkipped Status = "skipped"
)

// Distribution is one reward distribution.
// Held is the part of the pulled amount that stays in custody without an owner,
// Dust the rounding remainder never paid out.
type Distribution struct {
	ID         string       `json:"id"`
	Source     pool.Address `json:"source"`
	Amount     uint64       `json:"amount"`
	TotalStake string       `json:"totalStake"`
	Status     Status       `json:"status"`
	Held       uint64       `json:"held"`
	Dust       uint64       `json:"dust"`
	Paid       uint64       `json:"paid"`
	CreatedAt  uint64       `json:"createdAt"`
}

// Payout is the planned reward of one staker within a distribution.
type Payout struct {
	DistributionID string       `json:"distributionId"`
	Seq            int          `json:"seq"`
	Owner          pool.Address `json:"owner"`
	Sub            pool.Bytes32 `json:"subaccount"`
	Stake          uint64       `json:"stake"`
	Reward         uint64       `json:"reward"`
	Status         Status       `json:"status"`
	Err            string       `json:"err,omitempty"`
}

// Unreturned is a withdrawal removed from the ledger whose return transfer failed.
type Unreturned struct {
	Owner     pool.Address `json:"owner"`
	Sub       pool.Bytes32 `json:"subaccount"`
	DepositID uint64       `json:"depositId"`
	Amount    uint64       `json:"amount"`
	Err       string       `json:"err"`
	CreatedAt uint64       `json:"createdAt"`
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter narrows distribution and unreturned queries. Zero fields match everything.
type Filter struct {
	// Owner matches the distribution source or the unreturned owner.
	Owner *pool.Address
	// Status only applies to distributions.
	Status Status
	// From and To bound createdAt, both inclusive. To is ignored when zero.
	From    uint64
	To      uint64
	Order   Order
	Options *Options
}

// u64 stores a uint64 in a sqlite integer column, which is signed.
type u64 uint64

func (u u64) Value() (driver.Value, error) {
	return int64(u), nil // #nosec G115
}

func (u *u64) Scan(src any) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("cannot scan %T into uint64", src)
	}
	*u = u64(v) // #nosec G115
	return nil
}
