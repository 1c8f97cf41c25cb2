// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package identity

import (
	"bytes"
	"crypto/ecdsa"
	"io"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Sign adds the signature headers to req for the given timestamp.
func Sign(req *http.Request, key *ecdsa.PrivateKey, timestamp uint64) error {
	var body []byte
	if req.Body != nil {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return err
		}
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	sig, err := crypto.Sign(SigningHash(req.Method, req.URL.Path, timestamp, body), key)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderTimestamp, strconv.FormatUint(timestamp, 10))
	req.Header.Set(HeaderSignature, hexutil.Encode(sig))
	return nil
}
