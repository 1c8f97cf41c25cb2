// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package index keeps the aggregate stake of every account.
package index

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/pool"
)

var bucket = kv.Bucket("s")

// Service maps an account key to its stake balance.
// A zero balance is never stored.
type Service struct {
	store kv.Store
}

func New(store kv.Store) *Service {
	return &Service{store: bucket.NewStore(store)}
}

// Get returns the stake balance of key, zero when absent.
func (s *Service) Get(key pool.AccountKey) (uint64, error) {
	data, err := kv.GetOrNil(s.store, key.Bytes())
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stake")
	}
	return decode(data)
}

// Stage writes the balance of key into bulk.
func (s *Service) Stage(bulk kv.Bulk, key pool.AccountKey, balance uint64) error {
	putter := bucket.NewPutter(bulk)
	if balance == 0 {
		return putter.Delete(key.Bytes())
	}
	return putter.Put(key.Bytes(), binary.BigEndian.AppendUint64(nil, balance))
}

// Stake is one entry of a snapshot.
type Stake struct {
	Key    pool.AccountKey
	Amount uint64
}

// Snapshot returns every nonzero stake in ascending key order, and their total.
func (s *Service) Snapshot() ([]Stake, *uint256.Int, error) {
	var (
		stakes []Stake
		total  = new(uint256.Int)
	)
	err := s.Iterate(func(st Stake) error {
		stakes = append(stakes, st)
		total.Add(total, uint256.NewInt(st.Amount))
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return stakes, total, nil
}

// Iterate calls fn for every stored balance in key order.
func (s *Service) Iterate(fn func(Stake) error) error {
	iter := s.store.Iterate(kv.Range{})
	defer iter.Release()

	for iter.Next() {
		key, err := pool.ParseAccountKey(iter.Key())
		if err != nil {
			return errors.Wrap(err, "corrupted stake key")
		}
		amount, err := decode(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(Stake{Key: key, Amount: amount}); err != nil {
			return err
		}
	}
	return iter.Error()
}

func decode(data []byte) (uint64, error) {
	switch len(data) {
	case 0:
		return 0, nil
	case 8:
		return binary.BigEndian.Uint64(data), nil
	default:
		return 0, errors.Errorf("corrupted stake value of length %d", len(data))
	}
}
