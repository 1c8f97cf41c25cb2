// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/journal"
	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/lvldb"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/transfer"
	"github.com/vechain/stakepool/transfer/memledger"
)

const (
	genesisTime = uint64(1_700_000_000)
	day         = uint64(pool.SecondsPerDay)
)

var custody = transfer.Account{Owner: pool.Address{0xc0, 0xde}}

func key(owner, sub byte) pool.AccountKey {
	return pool.NewAccountKey(pool.Address{owner}, pool.Bytes32{sub})
}

func fund(k pool.AccountKey, amount uint64) memledger.Allocation {
	return memledger.Allocation{Account: transfer.AccountOf(k), Amount: amount}
}

// faultyStore fails bulk writes on demand.
type faultyStore struct {
	kv.Store
	failWrites atomic.Bool
}

func (f *faultyStore) Bulk() kv.Bulk {
	return &faultyBulk{Bulk: f.Store.Bulk(), f: f}
}

type faultyBulk struct {
	kv.Bulk
	f *faultyStore
}

func (b *faultyBulk) Write() error {
	if b.f.failWrites.Load() {
		return errors.New("disk full")
	}
	return b.Bulk.Write()
}

type testEnv struct {
	db      *lvldb.LevelDB
	store   *faultyStore
	ledger  *memledger.Ledger
	journal *journal.Journal
	clock   *clock.Fixed
	staker  *Staker
}

func newTestEnv(t *testing.T, allocs ...memledger.Allocation) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	l, err := memledger.New(&memledger.Genesis{Custody: custody, Balances: allocs})
	require.NoError(t, err)

	j, err := journal.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })

	env := &testEnv{
		db:      db,
		store:   &faultyStore{Store: db},
		ledger:  l,
		journal: j,
		clock:   clock.NewFixed(genesisTime),
	}
	env.staker, err = New(env.store, l, Options{CacheSize: 16, Recorder: j, Clock: env.clock})
	require.NoError(t, err)
	return env
}

// dump returns the whole content of the store.
func (env *testEnv) dump(t *testing.T) map[string]string {
	iter := env.db.Iterate(kv.Range{})
	defer iter.Release()

	content := make(map[string]string)
	for iter.Next() {
		content[string(iter.Key())] = string(iter.Value())
	}
	require.NoError(t, iter.Error())
	return content
}

// checkInvariant asserts the stored balances match the deposits.
func (env *testEnv) checkInvariant(t *testing.T) {
	report, err := env.staker.Verify(nil)
	require.NoError(t, err)
	assert.Empty(t, report.Mismatches)
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Deposit(k pool.AccountKey, days uint16, amount uint64, expectedID uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		d, err := st.env.staker.Deposit(context.Background(), k, days, amount, st.env.clock.Now())
		if err != nil {
			t.Fatalf("failed to deposit for %s: %v", k, err)
		}
		assert.Equal(t, expectedID, d.ID)
		t.Logf("deposited %d for %s as #%d", amount, k, d.ID)
	})
}

func (st *TestSequence) Withdraw(k pool.AccountKey, id uint64, expectedAmount uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		amount, err := st.env.staker.Withdraw(context.Background(), k, id, st.env.clock.Now())
		if err != nil {
			t.Fatalf("failed to withdraw #%d of %s: %v", id, k, err)
		}
		assert.Equal(t, expectedAmount, amount)
		t.Logf("withdrawn %d from #%d of %s", amount, id, k)
	})
}

func (st *TestSequence) Distribute(source pool.Address, amount uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		ok, err := st.env.staker.DistributeReward(context.Background(), source, amount)
		if err != nil {
			t.Fatalf("failed to distribute %d: %v", amount, err)
		}
		assert.True(t, ok)
		t.Logf("distributed %d", amount)
	})
}

func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(*testing.T) {
		st.env.clock.Advance(seconds)
	})
}

func (st *TestSequence) AssertBalance(k pool.AccountKey, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		balance, err := st.env.staker.StakeBalance(k)
		require.NoError(t, err)
		assert.Equal(t, expected, balance, "stake balance of %s", k)
	})
}

func (st *TestSequence) AssertWallet(k pool.AccountKey, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		assert.Equal(t, expected, st.env.ledger.Balance(transfer.AccountOf(k)), "wallet of %s", k)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	for _, f := range st.funcs {
		f(t)
	}
	st.env.checkInvariant(t)
}
