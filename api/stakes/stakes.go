// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/co"
	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker"
)

// Stakes serves the deposit and withdrawal operations of the calling owner.
// Requests of the same account are handled one at a time.
type Stakes struct {
	staker   *staker.Staker
	resolver identity.Resolver
	clock    clock.Clock
	guard    co.KeyedMutex[pool.AccountKey]
}

func New(s *staker.Staker, resolver identity.Resolver, c clock.Clock) *Stakes {
	return &Stakes{
		staker:   s,
		resolver: resolver,
		clock:    c,
	}
}

func (s *Stakes) handleDeposit(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(s.resolver, req)
	if err != nil {
		return err
	}
	var body DepositRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}

	sub := subOrZero(body.Subaccount)
	key := pool.NewAccountKey(caller, sub)

	unlock := s.guard.Lock(key)
	defer unlock()

	deposit, err := s.staker.Deposit(req.Context(), key, body.LockPeriodDays, uint64(*body.Amount), s.clock.Now())
	if err != nil {
		return utils.StakerError(err)
	}
	return utils.WriteJSON(w, convertDeposit(sub, deposit))
}

func (s *Stakes) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(s.resolver, req)
	if err != nil {
		return err
	}
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}

	sub := subOrZero(body.Subaccount)
	key := pool.NewAccountKey(caller, sub)

	unlock := s.guard.Lock(key)
	defer unlock()

	amount, err := s.staker.Withdraw(req.Context(), key, body.DepositID, s.clock.Now())
	if err != nil {
		return utils.StakerError(err)
	}
	return utils.WriteJSON(w, &Withdrawal{
		Subaccount: sub,
		DepositID:  body.DepositID,
		Amount:     amount,
	})
}

func (s *Stakes) handleGetDeposits(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(s.resolver, req)
	if err != nil {
		return err
	}
	owned, err := s.staker.Deposits(caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertOwned(owned))
}

func (s *Stakes) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(s.resolver, req)
	if err != nil {
		return err
	}
	sub, err := pool.ParseBytes32(mux.Vars(req)["subaccount"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "subaccount"))
	}
	balance, err := s.staker.StakeBalance(pool.NewAccountKey(caller, sub))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{
		Owner:      caller,
		Subaccount: sub,
		Balance:    balance,
	})
}

func (s *Stakes) handleGetTotal(w http.ResponseWriter, _ *http.Request) error {
	total, err := s.staker.TotalStake()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Total{Total: total.Dec()})
}

func (s *Stakes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/deposits").
		Methods(http.MethodPost).
		Name("stakes_post_deposit").
		HandlerFunc(utils.WrapHandlerFunc(s.handleDeposit))
	sub.Path("/deposits").
		Methods(http.MethodGet).
		Name("stakes_get_deposits").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetDeposits))
	sub.Path("/withdrawals").
		Methods(http.MethodPost).
		Name("stakes_post_withdrawal").
		HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/balance/{subaccount}").
		Methods(http.MethodGet).
		Name("stakes_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetBalance))
	sub.Path("/total").
		Methods(http.MethodGet).
		Name("stakes_get_total").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotal))
}
