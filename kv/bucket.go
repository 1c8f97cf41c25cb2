// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket is a key prefix carving a logical namespace out of a store.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	k := make([]byte, 0, len(b)+len(key))
	k = append(k, b...)
	return append(k, key...)
}

// NewGetter reads src within the bucket.
func (b Bucket) NewGetter(src Getter) Getter {
	return &bucketGetter{b, src}
}

// NewPutter writes to src within the bucket.
func (b Bucket) NewPutter(src Putter) Putter {
	return &bucketPutter{b, src}
}

// NewBulk shares src, so writes of several buckets commit together.
func (b Bucket) NewBulk(src Bulk) Bulk {
	return &bucketBulk{bucketPutter{b, src}, src}
}

// NewStore scopes every operation of src to the bucket. Iterated keys have
// the bucket prefix stripped.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{bucketGetter{b, src}, bucketPutter{b, src}, b, src}
}

type bucketGetter struct {
	b   Bucket
	src Getter
}

func (g *bucketGetter) Get(key []byte) ([]byte, error) { return g.src.Get(g.b.key(key)) }
func (g *bucketGetter) Has(key []byte) (bool, error)   { return g.src.Has(g.b.key(key)) }
func (g *bucketGetter) IsNotFound(err error) bool      { return g.src.IsNotFound(err) }

type bucketPutter struct {
	b   Bucket
	src Putter
}

func (p *bucketPutter) Put(key, val []byte) error { return p.src.Put(p.b.key(key), val) }
func (p *bucketPutter) Delete(key []byte) error   { return p.src.Delete(p.b.key(key)) }

type bucketBulk struct {
	bucketPutter
	src Bulk
}

func (k *bucketBulk) Len() int     { return k.src.Len() }
func (k *bucketBulk) Write() error { return k.src.Write() }

type bucketStore struct {
	bucketGetter
	bucketPutter
	bucket Bucket
	src    Store
}

func (s *bucketStore) Bulk() Bulk {
	return s.bucket.NewBulk(s.src.Bulk())
}

func (s *bucketStore) Iterate(r Range) Iterator {
	b := s.bucket
	r.Start = b.key(r.Start)
	if len(r.Limit) == 0 {
		r.Limit = util.BytesPrefix([]byte(b)).Limit
	} else {
		r.Limit = b.key(r.Limit)
	}
	return &bucketIterator{s.src.Iterate(r), len(b)}
}

type bucketIterator struct {
	Iterator
	prefixLen int
}

func (it *bucketIterator) Key() []byte { return it.Iterator.Key()[it.prefixLen:] }

// PrefixRange returns the range covering all keys with the given prefix.
func PrefixRange(prefix []byte) Range {
	r := util.BytesPrefix(prefix)
	return Range{Start: r.Start, Limit: r.Limit}
}
