// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/vechain/stakepool/kv"
)

var _ kv.Store = (*LevelDB)(nil)

const minCacheSize = 16

// Options configures a persistent store. Sizes below the minimum are raised to it.
type Options struct {
	CacheSize              int // MB
	OpenFilesCacheCapacity int
	// ReadOnly opens an existing store for inspection. Writes fail.
	ReadOnly bool
}

var readOpt = opt.ReadOptions{}

// LevelDB is a kv.Store backed by goleveldb.
type LevelDB struct {
	db  *leveldb.DB
	stg storage.Storage
	wo  opt.WriteOptions
}

// New opens the store at path, creating it unless opts.ReadOnly is set.
// Writes are synced to disk.
func New(path string, opts Options) (*LevelDB, error) {
	stg, err := storage.OpenFile(path, opts.ReadOnly)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	cacheSize := max(opts.CacheSize, minCacheSize)
	db, err := open(stg, &opt.Options{
		OpenFilesCacheCapacity: max(opts.OpenFilesCacheCapacity, minCacheSize),
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
		ReadOnly:               opts.ReadOnly,
		ErrorIfMissing:         opts.ReadOnly,
	})
	if err != nil {
		stg.Close()
		return nil, err
	}
	db.wo.Sync = true
	return db, nil
}

// NewMem creates an empty store held in memory.
func NewMem() (*LevelDB, error) {
	return open(storage.NewMemStorage(), &opt.Options{})
}

func open(stg storage.Storage, o *opt.Options) (*LevelDB, error) {
	db, err := leveldb.Open(stg, o)
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &LevelDB{db: db, stg: stg}, nil
}

func (ldb *LevelDB) IsNotFound(err error) bool {
	return errors.Is(err, leveldb.ErrNotFound)
}

func (ldb *LevelDB) Get(key []byte) ([]byte, error) {
	return ldb.db.Get(key, &readOpt)
}

func (ldb *LevelDB) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, &readOpt)
}

func (ldb *LevelDB) Put(key, value []byte) error {
	return ldb.db.Put(key, value, &ldb.wo)
}

func (ldb *LevelDB) Delete(key []byte) error {
	return ldb.db.Delete(key, &ldb.wo)
}

// Close releases the store and its file lock. Later operations fail.
func (ldb *LevelDB) Close() error {
	err := ldb.db.Close()
	if serr := ldb.stg.Close(); err == nil {
		err = serr
	}
	return err
}

// Stats is the on-disk footprint of the store.
type Stats struct {
	Tables int
	Size   int64 // bytes
}

// Stats reports the table count and total size over all levels.
func (ldb *LevelDB) Stats() (Stats, error) {
	var s leveldb.DBStats
	if err := ldb.db.Stats(&s); err != nil {
		return Stats{}, err
	}
	var stats Stats
	for i, n := range s.LevelSizes {
		stats.Size += n
		stats.Tables += s.LevelTablesCounts[i]
	}
	return stats, nil
}

// Bulk collects writes that are applied atomically on Write.
func (ldb *LevelDB) Bulk() kv.Bulk {
	return &bulk{ldb: ldb}
}

// Iterate walks keys within r in ascending order.
func (ldb *LevelDB) Iterate(r kv.Range) kv.Iterator {
	return ldb.db.NewIterator(&util.Range{Start: r.Start, Limit: r.Limit}, &readOpt)
}

type bulk struct {
	ldb   *LevelDB
	batch leveldb.Batch
}

func (b *bulk) Put(key, value []byte) error {
	b.batch.Put(key, value)
	return nil
}

func (b *bulk) Delete(key []byte) error {
	b.batch.Delete(key)
	return nil
}

func (b *bulk) Len() int { return b.batch.Len() }

func (b *bulk) Write() error {
	return b.ldb.db.Write(&b.batch, &b.ldb.wo)
}
