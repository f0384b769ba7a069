// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"net/http"
	"sort"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/thor"
)

type Farm struct {
	ledger *ledger.Ledger
}

func New(ledger *ledger.Ledger) *Farm {
	return &Farm{ledger}
}

func parseAddress(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (f *Farm) handleGetFarm(w http.ResponseWriter, _ *http.Request) error {
	sum, err := f.ledger.Summary()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Farm{
		Address:       sum.Address,
		Owner:         sum.Owner,
		RewardToken:   sum.RewardToken,
		Reserve:       types.NewAmount(sum.Reserve),
		AllowedTokens: sum.AllowedTokens,
		StakersCount:  sum.StakersCount,
		Revision:      sum.Revision,
	})
}

func (f *Farm) handleGetAllowedTokens(w http.ResponseWriter, _ *http.Request) error {
	bindings, err := f.ledger.PriceFeedBindings()
	if err != nil {
		return err
	}
	res := make([]*types.AllowedToken, 0, len(bindings))
	for _, b := range bindings {
		res = append(res, &types.AllowedToken{Token: b.Token, Feed: b.Feed})
	}
	return utils.WriteJSON(w, res)
}

func (f *Farm) handleAddAllowedToken(w http.ResponseWriter, req *http.Request) error {
	var body types.AddAllowedTokenRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := f.ledger.AddAllowedToken(body.Caller, body.Token)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (f *Farm) handleGetPriceFeed(w http.ResponseWriter, req *http.Request) error {
	tok, err := parseAddress(req, "token")
	if err != nil {
		return err
	}
	feed, err := f.ledger.PriceFeedOf(tok)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.AllowedToken{Token: tok, Feed: feed})
}

func (f *Farm) handleSetPriceFeed(w http.ResponseWriter, req *http.Request) error {
	tok, err := parseAddress(req, "token")
	if err != nil {
		return err
	}
	var body types.SetPriceFeedRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := f.ledger.SetPriceFeed(body.Caller, tok, body.Feed)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (f *Farm) handleGetTokenValue(w http.ResponseWriter, req *http.Request) error {
	tok, err := parseAddress(req, "token")
	if err != nil {
		return err
	}
	price, decimals, err := f.ledger.TokenValue(req.Context(), tok)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.TokenValue{Token: tok, Price: types.NewAmount(price), Decimals: decimals})
}

func (f *Farm) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body types.StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	receipt, err := f.ledger.Stake(req.Context(), body.Caller, body.Token, types.Int(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (f *Farm) handleUnstake(w http.ResponseWriter, req *http.Request) error {
	var body types.UnstakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := f.ledger.Unstake(body.Caller, body.Token)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (f *Farm) handleGetStakers(w http.ResponseWriter, _ *http.Request) error {
	stakers, err := f.ledger.Stakers()
	if err != nil {
		return err
	}
	if stakers == nil {
		stakers = []thor.Address{}
	}
	return utils.WriteJSON(w, stakers)
}

func (f *Farm) handleGetStaker(w http.ResponseWriter, req *http.Request) error {
	account, err := parseAddress(req, "account")
	if err != nil {
		return err
	}
	valued := req.URL.Query().Get("valued") == "true"
	info, err := f.ledger.StakerInfo(req.Context(), account, valued)
	if err != nil {
		return err
	}
	staker := &types.Staker{
		Account:            info.Account,
		IsStaker:           info.IsStaker,
		UniqueTokensStaked: info.Unique,
		Balances:           make([]*types.TokenAmount, 0, len(info.Balances)),
		TotalValue:         types.NewAmount(info.TotalValue),
	}
	for tok, amount := range info.Balances {
		staker.Balances = append(staker.Balances, &types.TokenAmount{Token: tok, Amount: types.NewAmount(amount)})
	}
	sort.Slice(staker.Balances, func(i, j int) bool {
		return staker.Balances[i].Token.String() < staker.Balances[j].Token.String()
	})
	return utils.WriteJSON(w, staker)
}

func (f *Farm) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	d, err := f.ledger.PreviewRewards(req.Context())
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Rewards{
		Payouts:   types.ConvertPayouts(d.Payouts),
		Total:     types.NewAmount(d.Total),
		Reserve:   types.NewAmount(d.Reserve),
		Shortfall: types.NewAmount(d.Shortfall()),
	})
}

func (f *Farm) handleIssueRewards(w http.ResponseWriter, req *http.Request) error {
	var body types.IssueRewardsRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, payouts, err := f.ledger.IssueRewardTokens(req.Context(), body.Caller)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Rewards{
		Receipt: types.ConvertReceipt(receipt),
		Payouts: types.ConvertPayouts(payouts),
		Total:   types.NewAmount(payouts.Total()),
	})
}

func (f *Farm) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("farm_get_farm").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFarm))
	sub.Path("/allowed-tokens").
		Methods(http.MethodGet).
		Name("farm_get_allowed_tokens").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetAllowedTokens))
	sub.Path("/allowed-tokens").
		Methods(http.MethodPost).
		Name("farm_add_allowed_token").
		HandlerFunc(utils.WrapHandlerFunc(f.handleAddAllowedToken))
	sub.Path("/price-feeds/{token}").
		Methods(http.MethodGet).
		Name("farm_get_price_feed").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPriceFeed))
	sub.Path("/price-feeds/{token}").
		Methods(http.MethodPut).
		Name("farm_set_price_feed").
		HandlerFunc(utils.WrapHandlerFunc(f.handleSetPriceFeed))
	sub.Path("/tokens/{token}/value").
		Methods(http.MethodGet).
		Name("farm_get_token_value").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetTokenValue))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("farm_stake").
		HandlerFunc(utils.WrapHandlerFunc(f.handleStake))
	sub.Path("/unstake").
		Methods(http.MethodPost).
		Name("farm_unstake").
		HandlerFunc(utils.WrapHandlerFunc(f.handleUnstake))
	sub.Path("/stakers").
		Methods(http.MethodGet).
		Name("farm_get_stakers").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetStakers))
	sub.Path("/stakers/{account}").
		Methods(http.MethodGet).
		Name("farm_get_staker").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetStaker))
	sub.Path("/rewards").
		Methods(http.MethodGet).
		Name("farm_preview_rewards").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetRewards))
	sub.Path("/rewards").
		Methods(http.MethodPost).
		Name("farm_issue_rewards").
		HandlerFunc(utils.WrapHandlerFunc(f.handleIssueRewards))
}
