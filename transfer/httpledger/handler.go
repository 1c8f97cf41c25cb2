// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpledger

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/transfer"
)

// Mount serves the ledger protocol for l under pathPrefix, so a local
// ledger can be driven by a remote Client.
func Mount(root *mux.Router, pathPrefix string, l transfer.Ledger) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/transfer-from").
		Methods(http.MethodPost).
		Name("ledger_post_transfer_from").
		HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			var body TransferFromRequest
			if !decode(w, req, &body) {
				return
			}
			index, err := l.TransferFrom(req.Context(), body.From, uint64(body.Amount))
			respond(w, index, err)
		})

	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("ledger_post_transfer").
		HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			var body TransferToRequest
			if !decode(w, req, &body) {
				return
			}
			index, err := l.TransferTo(req.Context(), body.To, uint64(body.Amount))
			respond(w, index, err)
		})
}

func decode(w http.ResponseWriter, req *http.Request, v any) bool {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		http.Error(w, "body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func respond(w http.ResponseWriter, index uint64, err error) {
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(&Receipt{Index: index})
}
