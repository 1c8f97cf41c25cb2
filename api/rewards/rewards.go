// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/staker"
)

// DistributeRequest is the body of a reward distribution. The caller funds it.
type DistributeRequest struct {
	Amount *math.HexOrDecimal64 `json:"amount"`
}

type Distribution struct {
	Distributed bool   `json:"distributed"`
	Amount      uint64 `json:"amount"`
}

type Rewards struct {
	staker   *staker.Staker
	resolver identity.Resolver
}

func New(s *staker.Staker, resolver identity.Resolver) *Rewards {
	return &Rewards{
		staker:   s,
		resolver: resolver,
	}
}

func (r *Rewards) handleDistribute(w http.ResponseWriter, req *http.Request) error {
	caller, err := utils.Caller(r.resolver, req)
	if err != nil {
		return err
	}
	var body DistributeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}

	amount := uint64(*body.Amount)
	distributed, err := r.staker.DistributeReward(req.Context(), caller, amount)
	if err != nil {
		return utils.StakerError(err)
	}
	return utils.WriteJSON(w, &Distribution{
		Distributed: distributed,
		Amount:      amount,
	})
}

func (r *Rewards) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("rewards_post_distribution").
		HandlerFunc(utils.WrapHandlerFunc(r.handleDistribute))
}
