// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tokenfarm/thor"
)

type Token struct {
	Address     thor.Address          `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	Decimals    uint8                 `json:"decimals"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type Balance struct {
	Token   thor.Address          `json:"token"`
	Account thor.Address          `json:"account"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Allowance struct {
	Token     thor.Address          `json:"token"`
	Owner     thor.Address          `json:"owner"`
	Spender   thor.Address          `json:"spender"`
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

// TransferRequest moves tokens from caller to To.
type TransferRequest struct {
	Caller thor.Address          `json:"caller"`
	To     thor.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ApproveRequest lets Spender transfer tokens of caller.
type ApproveRequest struct {
	Caller  thor.Address          `json:"caller"`
	Spender thor.Address          `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}
