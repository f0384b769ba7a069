// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b hashes the concatenation of data with blake2b-256. Operation ids and
// storage slot keys are derived with it.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return sum(&blake2bPool, data)
}

// Keccak256 hashes the concatenation of data with legacy keccak-256, as used by
// solidity selectors, event topics and contract addresses.
func Keccak256(data ...[]byte) Bytes32 {
	return sum(&keccakPool, data)
}

var (
	blake2bPool = sync.Pool{New: func() any {
		h, _ := blake2b.New256(nil)
		return h
	}}
	keccakPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}
)

func sum(pool *sync.Pool, data [][]byte) (h Bytes32) {
	hasher := pool.Get().(hash.Hash)
	for _, b := range data {
		hasher.Write(b)
	}
	hasher.Sum(h[:0])
	hasher.Reset()
	pool.Put(hasher)
	return
}
