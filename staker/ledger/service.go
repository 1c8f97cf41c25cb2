// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger stores the active deposits of every account.
package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/pool"
)

var bucket = kv.Bucket("d")

// Service maps an account key to its deposit list.
// An empty list is never stored.
//
// Lists handed out are shared with the cache and must not be modified.
type Service struct {
	store kv.Store
	cache *cache.LRU[pool.AccountKey, pool.DepositList]
}

func New(store kv.Store, cacheSize int) (*Service, error) {
	c, err := cache.NewLRU[pool.AccountKey, pool.DepositList](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		store: bucket.NewStore(store),
		cache: c,
	}, nil
}

// Get returns the deposit list of key, nil when it has none.
func (s *Service) Get(key pool.AccountKey) (pool.DepositList, error) {
	return s.cache.GetOrLoad(key, s.load)
}

func (s *Service) load(key pool.AccountKey) (pool.DepositList, error) {
	data, err := kv.GetOrNil(s.store, key.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "failed to get deposits")
	}
	return decode(data)
}

// Stage writes list for key into bulk. The change is visible once the bulk
// is written, after which Committed should be called.
func (s *Service) Stage(bulk kv.Bulk, key pool.AccountKey, list pool.DepositList) error {
	// a failed bulk must not leave the new list cached
	s.cache.Remove(key)

	putter := bucket.NewPutter(bulk)
	if len(list) == 0 {
		return putter.Delete(key.Bytes())
	}
	data, err := rlp.EncodeToBytes(list)
	if err != nil {
		return errors.Wrap(err, "failed to encode deposits")
	}
	return putter.Put(key.Bytes(), data)
}

// Committed caches list as the current deposits of key.
func (s *Service) Committed(key pool.AccountKey, list pool.DepositList) {
	s.cache.Add(key, list)
}

// Entry is the stored deposit list of one account.
type Entry struct {
	Key      pool.AccountKey
	Deposits pool.DepositList
}

// Owned returns the deposit lists of every sub-identity of owner,
// ordered by sub-identity.
func (s *Service) Owned(owner pool.Address) ([]Entry, error) {
	var entries []Entry
	err := s.iterate(kv.PrefixRange(owner.Bytes()), func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// Iterate calls fn for every stored deposit list in key order.
func (s *Service) Iterate(fn func(Entry) error) error {
	return s.iterate(kv.Range{}, fn)
}

// Count returns the number of accounts with deposits.
func (s *Service) Count() (int, error) {
	n := 0
	err := s.iterate(kv.Range{}, func(Entry) error {
		n++
		return nil
	})
	return n, err
}

func (s *Service) iterate(r kv.Range, fn func(Entry) error) error {
	iter := s.store.Iterate(r)
	defer iter.Release()

	for iter.Next() {
		key, err := pool.ParseAccountKey(iter.Key())
		if err != nil {
			return errors.Wrap(err, "corrupted deposit key")
		}
		list, err := decode(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(Entry{Key: key, Deposits: list}); err != nil {
			return err
		}
	}
	return iter.Error()
}

func decode(data []byte) (pool.DepositList, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var list pool.DepositList
	if err := rlp.DecodeBytes(data, &list); err != nil {
		return nil, errors.Wrap(err, "failed to decode deposits")
	}
	return list, nil
}

// CacheStats returns the deposit cache hits and misses and whether the hit
// rate changed since the last call.
func (s *Service) CacheStats() (bool, int64, int64) {
	return s.cache.Stats()
}
