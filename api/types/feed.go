// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tokenfarm/thor"
)

// Feed is the latest round of a price feed.
type Feed struct {
	Address   thor.Address          `json:"address"`
	Answer    *math.HexOrDecimal256 `json:"answer"`
	Decimals  uint8                 `json:"decimals"`
	RoundID   *math.HexOrDecimal256 `json:"roundId"`
	UpdatedAt uint64                `json:"updatedAt"`
}

// UpdateAnswerRequest starts a new round of a mock feed.
type UpdateAnswerRequest struct {
	Answer *math.HexOrDecimal256 `json:"answer"`
}
