// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"bytes"
	"fmt"

	"github.com/pkg/errors"
)

// AccountKeyLength length of the encoded account key in bytes.
const AccountKeyLength = AddressLength + 32

// AccountKey identifies one stake position: an owner plus a sub-identity.
// The zero value is a valid key.
type AccountKey struct {
	Owner Address
	Sub   Bytes32
}

// NewAccountKey creates an account key.
func NewAccountKey(owner Address, sub Bytes32) AccountKey {
	return AccountKey{Owner: owner, Sub: sub}
}

// Bytes returns the fixed size encoding, owner followed by sub-identity.
// Keys order the same way as their encodings.
func (k AccountKey) Bytes() []byte {
	b := make([]byte, 0, AccountKeyLength)
	b = append(b, k.Owner[:]...)
	return append(b, k.Sub[:]...)
}

// Compare returns -1, 0 or +1 depending on whether k sorts before, equal or after other.
func (k AccountKey) Compare(other AccountKey) int {
	if c := bytes.Compare(k.Owner[:], other.Owner[:]); c != 0 {
		return c
	}
	return bytes.Compare(k.Sub[:], other.Sub[:])
}

func (k AccountKey) String() string {
	return fmt.Sprintf("%v/%v", k.Owner, k.Sub.AbbrevString())
}

// ParseAccountKey decodes the fixed size encoding produced by Bytes.
func ParseAccountKey(b []byte) (AccountKey, error) {
	if len(b) != AccountKeyLength {
		return AccountKey{}, errors.Errorf("invalid account key length %d", len(b))
	}
	var k AccountKey
	copy(k.Owner[:], b[:AddressLength])
	copy(k.Sub[:], b[AddressLength:])
	return k, nil
}
