// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package memledger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakepool/transfer"
)

// Genesis is the initial state of a ledger.
//
//	custody:
//	  owner: 0x0000000000000000000000000000000000005ea1
//	balances:
//	  - account:
//	      owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
//	      subaccount: 0x0000000000000000000000000000000000000000000000000000000000000001
//	    amount: 1000000
type Genesis struct {
	Custody  transfer.Account `yaml:"custody"`
	Balances []Allocation     `yaml:"balances"`
}

// Allocation is a genesis balance.
type Allocation struct {
	Account transfer.Account `yaml:"account"`
	Amount  uint64           `yaml:"amount"`
}

// DecodeGenesis parses a YAML genesis document.
func DecodeGenesis(r io.Reader) (*Genesis, error) {
	var g Genesis
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		if errors.Is(err, io.EOF) {
			return &g, nil
		}
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

// LoadGenesis reads a YAML genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open genesis")
	}
	defer f.Close()

	return DecodeGenesis(f)
}
