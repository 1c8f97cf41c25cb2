// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/metrics"
)

var (
	metricDeposits         = metrics.LazyLoadCounter("staker_deposit_count")
	metricWithdrawals      = metrics.LazyLoadCounter("staker_withdrawal_count")
	metricDistributions    = metrics.LazyLoadCounterVec("staker_distribution_count", []string{"status"})
	metricPayouts          = metrics.LazyLoadCounterVec("staker_payout_count", []string{"status"})
	metricTransferFailures = metrics.LazyLoadCounterVec("staker_transfer_failure_count", []string{"op"})
	metricStakeTotal       = metrics.LazyLoadGauge("staker_stake_total")
	metricDistributionTime = metrics.LazyLoadHistogramVec("staker_distribution_duration_ms", []string{"status"}, metrics.Bucket10s)
)

// observeTotal reports the total stake, saturating at the gauge's range.
func observeTotal(total *uint256.Int) {
	if total.IsUint64() && total.Uint64() <= math.MaxInt64 {
		metricStakeTotal().Set(int64(total.Uint64())) // #nosec G115
	} else {
		metricStakeTotal().Set(math.MaxInt64)
	}
}
