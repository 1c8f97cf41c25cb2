// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package journal serves the reconciliation records of distributions and of
// withdrawals whose return transfer failed.
package journal

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/pool"

	journaldb "github.com/vechain/stakepool/journal"
)

// DefaultLimit is used when a query names no limit.
const DefaultLimit = 100

type Journal struct {
	db    *journaldb.Journal
	limit uint64
}

// New creates the journal api. Queries may not ask for more than limit records.
func New(db *journaldb.Journal, limit uint64) *Journal {
	return &Journal{
		db:    db,
		limit: limit,
	}
}

// parseFilter reads owner, status, from, to, order, offset and limit from the
// query string.
func (j *Journal) parseFilter(query url.Values) (*journaldb.Filter, error) {
	filter := &journaldb.Filter{
		Options: &journaldb.Options{Limit: min(DefaultLimit, j.limit)},
	}

	if s := query.Get("owner"); s != "" {
		owner, err := pool.ParseAddress(s)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, "owner"))
		}
		filter.Owner = &owner
	}
	if s := query.Get("status"); s != "" {
		filter.Status = journaldb.Status(s)
	}
	switch order := journaldb.Order(query.Get("order")); order {
	case "", journaldb.ASC, journaldb.DESC:
		filter.Order = order
	default:
		return nil, utils.BadRequest(fmt.Errorf("order: unsupported value %q", order))
	}

	for _, p := range []struct {
		name string
		dst  *uint64
	}{
		{"from", &filter.From},
		{"to", &filter.To},
		{"offset", &filter.Options.Offset},
		{"limit", &filter.Options.Limit},
	} {
		s := query.Get(p.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, p.name))
		}
		*p.dst = v
	}
	if filter.Options.Limit > j.limit {
		return nil, utils.Forbidden(errors.New("limit exceeds the maximum allowed value"))
	}
	return filter, nil
}

func (j *Journal) handleGetDistributions(w http.ResponseWriter, req *http.Request) error {
	filter, err := j.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	dists, err := j.db.Distributions(req.Context(), filter)
	if err != nil {
		return err
	}
	if dists == nil {
		dists = []*journaldb.Distribution{}
	}
	return utils.WriteJSON(w, dists)
}

func (j *Journal) handleGetPayouts(w http.ResponseWriter, req *http.Request) error {
	id := mux.Vars(req)["id"]
	dist, err := j.db.Distribution(req.Context(), id)
	if err != nil {
		return err
	}
	if dist == nil {
		return utils.NotFound(errors.New("distribution not found"))
	}
	payouts, err := j.db.Payouts(req.Context(), id)
	if err != nil {
		return err
	}
	if payouts == nil {
		payouts = []*journaldb.Payout{}
	}
	return utils.WriteJSON(w, payouts)
}

func (j *Journal) handleGetUnreturned(w http.ResponseWriter, req *http.Request) error {
	filter, err := j.parseFilter(req.URL.Query())
	if err != nil {
		return err
	}
	list, err := j.db.Unreturned(req.Context(), filter)
	if err != nil {
		return err
	}
	if list == nil {
		list = []*journaldb.Unreturned{}
	}
	return utils.WriteJSON(w, list)
}

func (j *Journal) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/distributions").
		Methods(http.MethodGet).
		Name("journal_get_distributions").
		HandlerFunc(utils.WrapHandlerFunc(j.handleGetDistributions))
	sub.Path("/distributions/{id}/payouts").
		Methods(http.MethodGet).
		Name("journal_get_payouts").
		HandlerFunc(utils.WrapHandlerFunc(j.handleGetPayouts))
	sub.Path("/unreturned").
		Methods(http.MethodGet).
		Name("journal_get_unreturned").
		HandlerFunc(utils.WrapHandlerFunc(j.handleGetUnreturned))
}
