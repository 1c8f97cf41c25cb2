// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package identity resolves the principal behind an API request.
package identity

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/clock"
	"github.com/vechain/stakepool/pool"
)

const (
	HeaderTimestamp = "x-stakepool-timestamp"
	HeaderSignature = "x-stakepool-signature"
	HeaderCaller    = "x-stakepool-caller"

	// DefaultMaxSkew is the default accepted distance between a request
	// timestamp and the local clock.
	DefaultMaxSkew = 5 * time.Minute

	// DefaultReplayCacheSize bounds the number of accepted requests
	// remembered for replay detection.
	DefaultReplayCacheSize = 1 << 16
)

// ErrUnauthenticated is returned when no caller can be resolved.
var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver resolves the caller of a request.
type Resolver interface {
	Resolve(req *http.Request) (pool.Address, error)
}

// SignatureResolver authenticates requests signed with a secp256k1 key.
// The signer's address is the caller. A signed request is accepted once:
// resending it while its timestamp is inside MaxSkew is rejected.
type SignatureResolver struct {
	Clock   clock.Clock
	MaxSkew time.Duration

	once sync.Once
	mu   sync.Mutex
	seen *cache.LRU[replayKey, uint64] // request => timestamp
}

// replayKey identifies a signed request independently of the signature
// encoding, which is malleable.
type replayKey struct {
	hash   [32]byte
	signer pool.Address
}

// NewSignatureResolver creates a resolver checking timestamps against c.
func NewSignatureResolver(c clock.Clock) *SignatureResolver {
	return &SignatureResolver{Clock: c, MaxSkew: DefaultMaxSkew}
}

// SigningHash returns the hash a client signs: keccak256 of the method, the
// path, the decimal timestamp and the body.
func SigningHash(method, path string, timestamp uint64, body []byte) []byte {
	return crypto.Keccak256(
		[]byte(method),
		[]byte(path),
		[]byte(strconv.FormatUint(timestamp, 10)),
		body,
	)
}

// Resolve implements Resolver. The request body is read and restored.
func (r *SignatureResolver) Resolve(req *http.Request) (pool.Address, error) {
	tsHeader := req.Header.Get(HeaderTimestamp)
	sigHeader := req.Header.Get(HeaderSignature)
	if tsHeader == "" || sigHeader == "" {
		return pool.Address{}, ErrUnauthenticated
	}

	timestamp, err := strconv.ParseUint(tsHeader, 10, 64)
	if err != nil {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "invalid timestamp")
	}
	now := r.Clock.Now()
	skew := time.Duration(max(now, timestamp)-min(now, timestamp)) * time.Second
	if skew > r.MaxSkew {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "timestamp out of range")
	}

	sig, err := hexutil.Decode(sigHeader)
	if err != nil || len(sig) != crypto.SignatureLength {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "invalid signature")
	}

	var body []byte
	if req.Body != nil {
		if body, err = io.ReadAll(req.Body); err != nil {
			return pool.Address{}, errors.Wrap(err, "read body")
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	hash := SigningHash(req.Method, req.URL.Path, timestamp, body)
	pub, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "invalid signature")
	}
	signer := pool.Address(crypto.PubkeyToAddress(*pub))

	key := replayKey{signer: signer}
	copy(key.hash[:], hash)
	if !r.accept(key, timestamp, now) {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "replayed request")
	}
	return signer, nil
}

// accept records key and reports whether it was not already accepted with
// a timestamp still inside the skew window.
func (r *SignatureResolver) accept(key replayKey, timestamp, now uint64) bool {
	r.once.Do(func() {
		r.seen, _ = cache.NewLRU[replayKey, uint64](DefaultReplayCacheSize)
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	if ts, ok := r.seen.Get(key); ok {
		skew := time.Duration(max(now, ts)-min(now, ts)) * time.Second
		if skew <= r.MaxSkew {
			return false
		}
	}
	r.seen.Add(key, timestamp)
	return true
}

// HeaderResolver trusts the caller named in a request header.
// Only suitable behind a trusted proxy or for development.
type HeaderResolver struct{}

// Resolve implements Resolver.
func (HeaderResolver) Resolve(req *http.Request) (pool.Address, error) {
	h := req.Header.Get(HeaderCaller)
	if h == "" {
		return pool.Address{}, ErrUnauthenticated
	}
	addr, err := pool.ParseAddress(h)
	if err != nil {
		return pool.Address{}, errors.WithMessage(ErrUnauthenticated, "invalid caller")
	}
	return addr, nil
}
