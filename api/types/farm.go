// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tokenfarm/builtin/farm"
	"github.com/vechain/tokenfarm/thor"
)

type Farm struct {
	Address       thor.Address          `json:"address"`
	Owner         thor.Address          `json:"owner"`
	RewardToken   thor.Address          `json:"rewardToken"`
	Reserve       *math.HexOrDecimal256 `json:"reserve"`
	AllowedTokens []thor.Address        `json:"allowedTokens"`
	StakersCount  uint64                `json:"stakersCount"`
	Revision      uint64                `json:"revision"`
}

// AllowedToken is a stakable token and its feed, zero if none is bound.
type AllowedToken struct {
	Token thor.Address `json:"token"`
	Feed  thor.Address `json:"feed"`
}

type AddAllowedTokenRequest struct {
	Caller thor.Address `json:"caller"`
	Token  thor.Address `json:"token"`
}

type SetPriceFeedRequest struct {
	Caller thor.Address `json:"caller"`
	Feed   thor.Address `json:"feed"`
}

// TokenValue is the latest price of a token.
type TokenValue struct {
	Token    thor.Address          `json:"token"`
	Price    *math.HexOrDecimal256 `json:"price"`
	Decimals uint8                 `json:"decimals"`
}

type StakeRequest struct {
	Caller thor.Address          `json:"caller"`
	Token  thor.Address          `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type UnstakeRequest struct {
	Caller thor.Address `json:"caller"`
	Token  thor.Address `json:"token"`
}

type TokenAmount struct {
	Token  thor.Address          `json:"token"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// Staker describes the stake of an account. TotalValue is only set when requested.
type Staker struct {
	Account            thor.Address          `json:"account"`
	IsStaker           bool                  `json:"isStaker"`
	UniqueTokensStaked uint64                `json:"uniqueTokensStaked"`
	Balances           []*TokenAmount        `json:"balances"`
	TotalValue         *math.HexOrDecimal256 `json:"totalValue,omitempty"`
}

type IssueRewardsRequest struct {
	Caller thor.Address `json:"caller"`
}

type Payout struct {
	Staker thor.Address          `json:"staker"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// ConvertPayouts converts farm payouts.
func ConvertPayouts(payouts farm.Payouts) []*Payout {
	res := make([]*Payout, 0, len(payouts))
	for _, p := range payouts {
		res = append(res, &Payout{Staker: p.Staker, Amount: NewAmount(p.Amount)})
	}
	return res
}

// Rewards is the result of a reward issuance, Receipt is nil for a preview.
// Reserve and Shortfall are only reported by a preview.
type Rewards struct {
	Receipt   *Receipt              `json:"receipt,omitempty"`
	Payouts   []*Payout             `json:"payouts"`
	Total     *math.HexOrDecimal256 `json:"total"`
	Reserve   *math.HexOrDecimal256 `json:"reserve,omitempty"`
	Shortfall *math.HexOrDecimal256 `json:"shortfall,omitempty"`
}
