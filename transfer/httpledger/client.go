// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package httpledger talks to a remote token ledger over HTTP.
//
// The protocol has two calls, both answered with {"index": <transfer index>}:
//
//	POST /transfer-from {"from": <account>, "amount": <amount>}
//	POST /transfer      {"to": <account>, "amount": <amount>}
package httpledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakepool/transfer"
)

var ErrNot200Status = errors.New("not 200 status code")

// TransferFromRequest is the body of POST /transfer-from.
type TransferFromRequest struct {
	From   transfer.Account    `json:"from"`
	Amount math.HexOrDecimal64 `json:"amount"`
}

// TransferToRequest is the body of POST /transfer.
type TransferToRequest struct {
	To     transfer.Account    `json:"to"`
	Amount math.HexOrDecimal64 `json:"amount"`
}

// Receipt is the response of both calls.
type Receipt struct {
	Index uint64 `json:"index"`
}

// Client is a transfer.Ledger backed by a remote ledger service.
type Client struct {
	url string
	c   *http.Client
}

var _ transfer.Ledger = (*Client)(nil)

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: url,
		c:   c,
	}
}

// TransferFrom implements transfer.Ledger.
func (c *Client) TransferFrom(ctx context.Context, payer transfer.Account, amount uint64) (uint64, error) {
	receipt, err := c.httpPOST(ctx, c.url+"/transfer-from", &TransferFromRequest{
		From:   payer,
		Amount: math.HexOrDecimal64(amount),
	})
	if err != nil {
		return 0, fmt.Errorf("unable to transfer from %v - %w", payer, err)
	}
	return receipt.Index, nil
}

// TransferTo implements transfer.Ledger.
func (c *Client) TransferTo(ctx context.Context, payee transfer.Account, amount uint64) (uint64, error) {
	receipt, err := c.httpPOST(ctx, c.url+"/transfer", &TransferToRequest{
		To:     payee,
		Amount: math.HexOrDecimal64(amount),
	})
	if err != nil {
		return 0, fmt.Errorf("unable to transfer to %v - %w", payee, err)
	}
	return receipt.Index, nil
}

func (c *Client) httpPOST(ctx context.Context, url string, payload any) (*Receipt, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal payload - %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http error - Status Code %d - %s - %w", resp.StatusCode, bytes.TrimSpace(body), ErrNot200Status)
	}

	var receipt Receipt
	if err := json.Unmarshal(body, &receipt); err != nil {
		return nil, fmt.Errorf("unable to unmarshal receipt - %w", err)
	}
	return &receipt, nil
}
