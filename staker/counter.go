// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/stakepool/kv"
)

var (
	counterBucket   = kv.Bucket("c")
	keyDepositIDCtr = []byte("deposit-id")
)

// depositIDCounter hands out deposit ids. The first id is 1.
type depositIDCounter struct {
	store kv.Store
}

func newDepositIDCounter(store kv.Store) *depositIDCounter {
	return &depositIDCounter{store: counterBucket.NewStore(store)}
}

// Last returns the last allocated id, 0 if none.
func (c *depositIDCounter) Last() (uint64, error) {
	data, err := kv.GetOrNil(c.store, keyDepositIDCtr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get deposit id counter")
	}
	if len(data) == 0 {
		return 0, nil
	}
	if len(data) != 8 {
		return 0, errors.Errorf("corrupted deposit id counter of length %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}

// Next allocates a new id. The counter is persisted before the id is
// returned, so an id is never handed out twice even if the deposit that
// uses it is never written.
func (c *depositIDCounter) Next() (uint64, error) {
	id, err := c.Last()
	if err != nil {
		return 0, err
	}
	if id == math.MaxUint64 {
		return 0, errors.New("deposit ID counter overflow: maximum deposits reached")
	}
	id++
	if err := c.store.Put(keyDepositIDCtr, binary.BigEndian.AppendUint64(nil, id)); err != nil {
		return 0, errors.Wrap(err, "failed to update deposit id counter")
	}
	return id, nil
}
