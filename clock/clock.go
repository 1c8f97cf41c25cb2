// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides the wall-clock time deposits are stamped with.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "clock")

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() uint64
}

// System is the host clock.
type System struct{}

func (System) Now() uint64 {
	return uint64(time.Now().Unix())
}

// Fixed is a settable clock.
type Fixed struct {
	now atomic.Uint64
}

// NewFixed creates a clock stopped at now.
func NewFixed(now uint64) *Fixed {
	f := &Fixed{}
	f.now.Store(now)
	return f
}

func (f *Fixed) Now() uint64 {
	return f.now.Load()
}

// Set moves the clock to now.
func (f *Fixed) Set(now uint64) {
	f.now.Store(now)
}

// Advance moves the clock forward by d seconds.
func (f *Fixed) Advance(d uint64) uint64 {
	return f.now.Add(d)
}

// Query returns the offset of the local clock against the given NTP host.
type Query func(host string) (time.Duration, error)

// NTPQuery queries host with the NTP protocol.
func NTPQuery(host string) (time.Duration, error) {
	resp, err := ntp.Query(host)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}

// CheckOffset warns when the local clock drifts more than tolerance from host.
// It returns the measured offset.
func CheckOffset(query Query, host string, tolerance time.Duration) (time.Duration, error) {
	offset, err := query(host)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return 0, err
	}
	if offset.Abs() > tolerance {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(offset))
	}
	return offset, nil
}
