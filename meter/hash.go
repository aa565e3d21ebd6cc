// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package meter

import (
	"hash"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"
)

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	hash, err := blake2b.New256(nil)
	if err != nil {
		// only fails on an oversized key, never with a nil one
		panic(err)
	}
	return hash
}

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) (b32 Bytes32) {
	hash := NewBlake2b()
	for _, b := range data {
		hash.Write(b)
	}
	hash.Sum(b32[:0])
	return
}

// Blake2bRLP computes blake2b-256 over the rlp encoding of v.
// It panics if v can not be rlp encoded, e.g. a negative big.Int.
func Blake2bRLP(v interface{}) (b32 Bytes32) {
	hw := NewBlake2b()
	if err := rlp.Encode(hw, v); err != nil {
		panic(err)
	}
	hw.Sum(b32[:0])
	return
}
