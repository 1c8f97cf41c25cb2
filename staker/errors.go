// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/staker/reverts"
)

var (
	ErrInvalidLockPeriod    = reverts.New("invalid lock period")
	ErrLockPeriodNotExpired = reverts.New("lock period not expired")
	ErrNoDepositFound       = reverts.New("no deposit found")
	// ErrNoStakerFound is returned after the reward was pulled; it stays in custody.
	ErrNoStakerFound = reverts.New("no staker found")
	ErrStakeOverflow = reverts.New("stake balance overflow")

	// ErrLedgerTransferFailed matches every *TransferError with errors.Is.
	ErrLedgerTransferFailed = errors.New("ledger transfer failed")
)

// TransferError reports a failed call to the token ledger.
type TransferError struct {
	Op    string
	Cause error
}

func (e *TransferError) Error() string {
	return "ledger transfer failed: " + e.Op + ": " + e.Cause.Error()
}

func (e *TransferError) Unwrap() error { return e.Cause }

func (e *TransferError) Is(target error) bool {
	return target == ErrLedgerTransferFailed
}

func transferFailed(op string, cause error) error {
	metricTransferFailures().AddWithLabel(1, map[string]string{"op": op})
	return &TransferError{Op: op, Cause: cause}
}
