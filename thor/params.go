// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Ether is 10^18 wei, the base unit of every 18-decimals token.
var Ether = big.NewInt(1e18)

// Deployment defaults.
var (
	InitialSupply = ToWei(1_000_000_000) // dapp token total supply minted to the deployer
	KeptAmount    = ToWei(1_000_000)     // dapp tokens kept by the deployer, the rest funds the farm

	InitialPriceFeedValue = ToWei(2000) // answer of the mock price feeds
)

const (
	PriceFeedDecimals uint8 = 18 // decimals of the mock price feeds
	TokenDecimals     uint8 = 18

	// MaxDecimals bounds feed decimals so that 10^decimals fits in 256 bits.
	MaxDecimals uint8 = 77
)

// ToWei converts an amount of whole tokens into wei.
func ToWei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}

// Pow10 returns 10^n.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
