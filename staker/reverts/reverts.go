// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts marks errors caused by the caller's request rather than by
// the pool itself. A revert is a rejection to report to the caller, not a
// rollback: most are returned before any state changes, but an operation
// may revert after moving funds, in which case its doc says what is kept.
package reverts

import (
	"errors"
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// IsRevertErr reports whether err, or any error it wraps, is a revert.
func IsRevertErr(err error) bool {
	if err == nil {
		return false
	}
	var ve *ErrRevert
	return errors.As(err, &ve)
}
