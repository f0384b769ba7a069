// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	"math/big"
	mathrand "math/rand/v2"

	"github.com/vechain/tokenfarm/thor"
)

func RandomHash() thor.Bytes32 {
	var b32 thor.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

func RandAddresses(n int) (addrs []thor.Address) {
	for range n {
		addrs = append(addrs, RandAddress())
	}
	return
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandAmount returns a random amount in [1, max] ether.
func RandAmount(max int64) *big.Int {
	return thor.ToWei(1 + mathrand.Int64N(max)) //#nosec G404
}
