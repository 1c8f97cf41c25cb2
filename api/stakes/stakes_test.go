// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/api/stakes"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/memledger"
)

const genesisTime = uint64(1_700_000_000)

var (
	alice   = pool.Address{0xa1}
	bob     = pool.Address{0xb0}
	custody = transfer.Account{Owner: pool.Address{0xc0, 0xde}}
	sub1    = pool.Bytes32{1}
)

type env struct {
	ts     *httptest.Server
	ledger *memledger.Ledger
	clock  *clock.Fixed
}

func newEnv(t *testing.T, resolver identity.Resolver, c *clock.Fixed) *env {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := memledger.New(&memledger.Genesis{
		Custody: custody,
		Balances: []memledger.Allocation{
			{Account: transfer.Account{Owner: alice}, Amount: 1000},
			{Account: transfer.Account{Owner: alice, Sub: &sub1}, Amount: 1000},
			{Account: transfer.Account{Owner: bob}, Amount: 1000},
		},
	})
	require.NoError(t, err)

	s, err := staker.New(db, l, staker.Options{Clock: c})
	require.NoError(t, err)

	router := mux.NewRouter()
	stakes.New(s, resolver, c).Mount(router, "/stakes")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return &env{ts: ts, ledger: l, clock: c}
}

func (e *env) do(t *testing.T, method, path string, caller *pool.Address, body any) ([]byte, int) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.ts.URL+path, rd)
	require.NoError(t, err)
	if caller != nil {
		req.Header.Set(identity.HeaderCaller, caller.String())
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return data, res.StatusCode
}

func TestDepositAndWithdraw(t *testing.T) {
	e := newEnv(t, identity.HeaderResolver{}, clock.NewFixed(genesisTime))

	res, code := e.do(t, http.MethodPost, "/stakes/deposits", &alice, map[string]any{
		"lockPeriodDays": 90,
		"amount":         "0x64",
	})
	require.Equal(t, http.StatusOK, code, string(res))

	var deposit stakes.Deposit
	require.NoError(t, json.Unmarshal(res, &deposit))
	assert.Equal(t, stakes.Deposit{
		ID:             1,
		Amount:         100,
		CreatedAt:      genesisTime,
		LockPeriodDays: 90,
		UnlockTime:     genesisTime + 90*pool.SecondsPerDay,
	}, deposit)

	res, code = e.do(t, http.MethodPost, "/stakes/deposits", &alice, map[string]any{
		"subaccount":     sub1,
		"lockPeriodDays": 180,
		"amount":         50,
	})
	require.Equal(t, http.StatusOK, code, string(res))

	res, code = e.do(t, http.MethodGet, "/stakes/deposits", &alice, nil)
	require.Equal(t, http.StatusOK, code)
	var deposits []*stakes.Deposit
	require.NoError(t, json.Unmarshal(res, &deposits))
	require.Len(t, deposits, 2)
	assert.Equal(t, pool.Bytes32{}, deposits[0].Subaccount)
	assert.Equal(t, sub1, deposits[1].Subaccount)
	assert.Equal(t, uint64(2), deposits[1].ID)

	res, code = e.do(t, http.MethodGet, "/stakes/balance/"+sub1.String(), &alice, nil)
	require.Equal(t, http.StatusOK, code)
	var balance stakes.Balance
	require.NoError(t, json.Unmarshal(res, &balance))
	assert.Equal(t, stakes.Balance{Owner: alice, Subaccount: sub1, Balance: 50}, balance)

	res, code = e.do(t, http.MethodGet, "/stakes/total", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"total":"150"}`, string(res))

	// locked
	res, code = e.do(t, http.MethodPost, "/stakes/withdrawals", &alice, map[string]any{"depositId": 1})
	assert.Equal(t, http.StatusForbidden, code, string(res))

	e.clock.Advance(90 * pool.SecondsPerDay)
	res, code = e.do(t, http.MethodPost, "/stakes/withdrawals", &alice, map[string]any{"depositId": 1})
	require.Equal(t, http.StatusOK, code, string(res))
	assert.JSONEq(t, `{"subaccount":"`+pool.Bytes32{}.String()+`","depositId":1,"amount":100}`, string(res))
	assert.Equal(t, uint64(1000), e.ledger.Balance(transfer.Account{Owner: alice}))

	// already withdrawn
	_, code = e.do(t, http.MethodPost, "/stakes/withdrawals", &alice, map[string]any{"depositId": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOwnerScoping(t *testing.T) {
	e := newEnv(t, identity.HeaderResolver{}, clock.NewFixed(genesisTime))

	_, code := e.do(t, http.MethodPost, "/stakes/deposits", &alice, map[string]any{"lockPeriodDays": 90, "amount": 10})
	require.Equal(t, http.StatusOK, code)

	res, code := e.do(t, http.MethodGet, "/stakes/deposits", &bob, nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(res))

	e.clock.Advance(90 * pool.SecondsPerDay)
	_, code = e.do(t, http.MethodPost, "/stakes/withdrawals", &bob, map[string]any{"depositId": 1})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestBadRequests(t *testing.T) {
	e := newEnv(t, identity.HeaderResolver{}, clock.NewFixed(genesisTime))

	tests := []struct {
		name   string
		method string
		path   string
		caller *pool.Address
		body   any
		code   int
	}{
		{"no caller", http.MethodGet, "/stakes/deposits", nil, nil, http.StatusUnauthorized},
		{"invalid lock period", http.MethodPost, "/stakes/deposits", &alice, map[string]any{"lockPeriodDays": 30, "amount": 1}, http.StatusBadRequest},
		{"missing amount", http.MethodPost, "/stakes/deposits", &alice, map[string]any{"lockPeriodDays": 90}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/stakes/deposits", &alice, map[string]any{"lockPeriodDays": 90, "amount": 1, "owner": bob}, http.StatusBadRequest},
		{"insufficient funds", http.MethodPost, "/stakes/deposits", &bob, map[string]any{"lockPeriodDays": 90, "amount": 1001}, http.StatusBadGateway},
		{"bad subaccount", http.MethodGet, "/stakes/balance/0x01", &alice, nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, code := e.do(t, tt.method, tt.path, tt.caller, tt.body)
			assert.Equal(t, tt.code, code, string(res))
		})
	}
	assert.Equal(t, uint64(1000), e.ledger.Balance(transfer.Account{Owner: bob}))
}

func TestLedgerFailure(t *testing.T) {
	e := newEnv(t, identity.HeaderResolver{}, clock.NewFixed(genesisTime))
	e.ledger.FailNext(memledger.OpTransferFrom, errors.New("ledger down"))

	res, code := e.do(t, http.MethodPost, "/stakes/deposits", &alice, map[string]any{"lockPeriodDays": 90, "amount": 1})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.True(t, strings.Contains(string(res), "ledger down"))
}

func TestSignedRequests(t *testing.T) {
	c := clock.NewFixed(genesisTime)
	e := newEnv(t, identity.NewSignatureResolver(c), c)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := pool.Address(crypto.PubkeyToAddress(key.PublicKey))
	require.NoError(t, e.ledger.Mint(transfer.Account{Owner: signer}, 500))

	body := []byte(`{"lockPeriodDays":360,"amount":200}`)
	req, err := http.NewRequest(http.MethodPost, e.ts.URL+"/stakes/deposits", bytes.NewReader(body))
	require.NoError(t, err)
	require.NoError(t, identity.Sign(req, key, c.Now()))

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, uint64(300), e.ledger.Balance(transfer.Account{Owner: signer}))

	// resending the signed deposit does not stake again
	replay, err := http.NewRequest(http.MethodPost, e.ts.URL+"/stakes/deposits", bytes.NewReader(body))
	require.NoError(t, err)
	replay.Header = req.Header.Clone()
	res, err = http.DefaultClient.Do(replay)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, uint64(300), e.ledger.Balance(transfer.Account{Owner: signer}))

	// unsigned requests are rejected
	_, code := e.do(t, http.MethodGet, "/stakes/deposits", &signer, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}
