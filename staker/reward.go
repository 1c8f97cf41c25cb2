// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"time"

	"github.com/holiman/uint256"

	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker/index"
	"github.com/vechain/stakepool/transfer"
)

// DistributeReward pulls amount from source and shares it among all current
// stakers, each receiving floor(stake * amount / total). The rounding
// remainder stays in custody.
//
// Payouts are sent one by one in account key order. The first failed payout
// aborts the distribution. Payouts already sent are kept. It returns true when
// every payout was sent.
//
// If nobody stakes, the pulled amount is held in custody and ErrNoStakerFound
// is returned.
func (s *Staker) DistributeReward(ctx context.Context, source pool.Address, amount uint64) (bool, error) {
	if _, err := s.transfers.TransferFrom(ctx, transfer.Account{Owner: source}, amount); err != nil {
		return false, transferFailed("transfer_from", err)
	}

	s.mu.Lock()
	stakes, total, err := s.index.Snapshot()
	s.mu.Unlock()

	dist := &journal.Distribution{
		ID:         journal.NewDistributionID(),
		Source:     source,
		Amount:     amount,
		TotalStake: "0",
		CreatedAt:  s.clock.Now(),
	}

	if err != nil {
		s.hold(ctx, dist)
		return false, err
	}
	observeTotal(total)
	dist.TotalStake = total.Dec()

	if total.IsZero() {
		s.hold(ctx, dist)
		logger.Debug("reward held, no staker", "id", dist.ID, "amount", amount)
		return false, ErrNoStakerFound
	}

	payouts, dust := splitReward(stakes, total, amount)
	dist.Status = journal.StatusPending
	dist.Dust = dust
	s.recorder.recordDistribution(ctx, dist, payouts)

	// funds are pulled, payouts run to completion whatever happens to ctx
	payCtx := context.WithoutCancel(ctx)
	start := time.Now()
	var paid uint64
	for _, p := range payouts {
		if p.Status == journal.StatusSkipped {
			continue
		}
		sub := p.Sub
		if _, err := s.transfers.TransferTo(payCtx, transfer.Account{Owner: p.Owner, Sub: &sub}, p.Reward); err != nil {
			metricPayouts().AddWithLabel(1, map[string]string{"status": string(journal.StatusFailed)})
			metricDistributions().AddWithLabel(1, map[string]string{"status": string(journal.StatusFailed)})
			metricDistributionTime().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"status": string(journal.StatusFailed)})
			logger.Warn("reward payout failed", "id", dist.ID, "seq", p.Seq, "owner", p.Owner, "reward", p.Reward, "err", err)

			s.recorder.settlePayout(ctx, dist.ID, p.Seq, journal.StatusFailed, err)
			s.recorder.settleDistribution(ctx, dist.ID, journal.StatusFailed, paid)
			return false, transferFailed("transfer", err)
		}
		paid += p.Reward
		metricPayouts().AddWithLabel(1, map[string]string{"status": string(journal.StatusPaid)})
		s.recorder.settlePayout(ctx, dist.ID, p.Seq, journal.StatusPaid, nil)
	}

	s.recorder.settleDistribution(ctx, dist.ID, journal.StatusCompleted, paid)
	metricDistributions().AddWithLabel(1, map[string]string{"status": string(journal.StatusCompleted)})
	metricDistributionTime().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"status": string(journal.StatusCompleted)})
	logger.Debug("reward distributed", "id", dist.ID, "amount", amount, "stakers", len(stakes), "paid", paid, "dust", dust)
	return true, nil
}

func (s *Staker) hold(ctx context.Context, dist *journal.Distribution) {
	dist.Status = journal.StatusHeld
	dist.Held = dist.Amount
	s.recorder.recordDistribution(ctx, dist, nil)
	metricDistributions().AddWithLabel(1, map[string]string{"status": string(journal.StatusHeld)})
}

// splitReward computes the payout of every stake and the undistributed remainder.
// Zero payouts are marked skipped.
func splitReward(stakes []index.Stake, total *uint256.Int, amount uint64) ([]*journal.Payout, uint64) {
	var (
		payouts     = make([]*journal.Payout, 0, len(stakes))
		reward      = uint256.NewInt(amount)
		distributed uint64
	)
	for i, st := range stakes {
		// stake <= total, so the share never exceeds amount
		share, _ := new(uint256.Int).MulDivOverflow(uint256.NewInt(st.Amount), reward, total)

		p := &journal.Payout{
			Seq:    i,
			Owner:  st.Key.Owner,
			Sub:    st.Key.Sub,
			Stake:  st.Amount,
			Reward: share.Uint64(),
			Status: journal.StatusPending,
		}
		if p.Reward == 0 {
			p.Status = journal.StatusSkipped
		}
		distributed += p.Reward
		payouts = append(payouts, p)
	}
	return payouts, amount - distributed
}
