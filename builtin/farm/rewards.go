// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"context"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

// maxParallelFeeds bounds concurrent price reads.
const maxParallelFeeds = 8

// Payout is the reward paid to one staker.
type Payout struct {
	Staker thor.Address `json:"staker"`
	Amount *big.Int     `json:"amount"`
}

// Payouts lists payouts in stakers order.
type Payouts []*Payout

// Total sums all payouts.
func (p Payouts) Total() *big.Int {
	total := new(big.Int)
	for _, payout := range p {
		total.Add(total, payout.Amount)
	}
	return total
}

// Value returns the value of amount priced at p, amount * answer / 10^decimals.
func Value(amount *big.Int, p *oracle.Price) *big.Int {
	v := new(big.Int).Mul(amount, p.Answer)
	return v.Quo(v, thor.Pow10(p.Decimals))
}

func (f *Farm) readFeed(ctx context.Context, feed thor.Address) (*oracle.Price, error) {
	if f.feeds == nil {
		return nil, oracle.Unavailable(feed, errors.New("no oracle configured"))
	}
	p, err := f.feeds.LatestPrice(ctx, feed)
	if err != nil {
		return nil, oracle.Unavailable(feed, err)
	}
	if p == nil || p.Answer == nil {
		return nil, oracle.Unavailable(feed, errors.New("empty answer"))
	}
	return p, nil
}

func (f *Farm) feedOf(token thor.Address) (thor.Address, error) {
	feed, err := f.PriceFeedOf(token)
	if err != nil {
		return thor.Address{}, err
	}
	if feed.IsZero() {
		return thor.Address{}, reverts.Newf(reverts.ErrNoPriceFeedBound, "no price feed bound to %v", token)
	}
	return feed, nil
}

func (f *Farm) price(ctx context.Context, token thor.Address) (*oracle.Price, error) {
	feed, err := f.feedOf(token)
	if err != nil {
		return nil, err
	}
	return f.readFeed(ctx, feed)
}

// prices reads the price of every token, once per distinct feed and in parallel.
func (f *Farm) prices(ctx context.Context, tokens []thor.Address) (map[thor.Address]*oracle.Price, error) {
	var (
		feedOf = make(map[thor.Address]thor.Address, len(tokens))
		feeds  []thor.Address
		seen   = make(map[thor.Address]int)
	)
	for _, token := range tokens {
		feed, err := f.feedOf(token)
		if err != nil {
			return nil, err
		}
		feedOf[token] = feed
		if _, ok := seen[feed]; !ok {
			seen[feed] = len(feeds)
			feeds = append(feeds, feed)
		}
	}

	results := make([]*oracle.Price, len(feeds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFeeds)
	for i, feed := range feeds {
		g.Go(func() error {
			p, err := f.readFeed(gctx, feed)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	prices := make(map[thor.Address]*oracle.Price, len(tokens))
	for token, feed := range feedOf {
		prices[token] = results[seen[feed]]
	}
	return prices, nil
}

// GetTokenValue returns the price of token and its decimals, as read from the bound feed.
func (f *Farm) GetTokenValue(ctx context.Context, token thor.Address) (*big.Int, uint8, error) {
	p, err := f.price(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	return p.Answer, p.Decimals, nil
}

// stakes returns the positive balances of account, keyed by token.
func (f *Farm) stakes(account thor.Address, tokens []thor.Address) (map[thor.Address]*big.Int, error) {
	stakes := make(map[thor.Address]*big.Int)
	for _, token := range tokens {
		bal, err := f.StakingBalance(token, account)
		if err != nil {
			return nil, err
		}
		if bal.Sign() > 0 {
			stakes[token] = bal
		}
	}
	return stakes, nil
}

func totalValue(stakes map[thor.Address]*big.Int, prices map[thor.Address]*oracle.Price) *big.Int {
	total := new(big.Int)
	for token, bal := range stakes {
		total.Add(total, Value(bal, prices[token]))
	}
	return total
}

// GetStakerTotalValue returns the USD value of everything account stakes, 0 without stakes.
func (f *Farm) GetStakerTotalValue(ctx context.Context, account thor.Address) (*big.Int, error) {
	tokens, err := f.AllowedTokens()
	if err != nil {
		return nil, err
	}
	stakes, err := f.stakes(account, tokens)
	if err != nil {
		return nil, err
	}
	if len(stakes) == 0 {
		return new(big.Int), nil
	}
	staked := make([]thor.Address, 0, len(stakes))
	for token := range stakes {
		staked = append(staked, token)
	}
	prices, err := f.prices(ctx, staked)
	if err != nil {
		return nil, err
	}
	return totalValue(stakes, prices), nil
}

// Reserve returns the reward tokens available for payouts: the farm balance minus what
// stakers deposited of the reward token itself.
func (f *Farm) Reserve() (*big.Int, error) {
	rewardToken, err := f.RewardToken()
	if err != nil {
		return nil, err
	}
	bal, err := f.token(rewardToken).BalanceOf(f.Address())
	if err != nil {
		return nil, err
	}
	staked, err := f.TotalStaked(rewardToken)
	if err != nil {
		return nil, err
	}
	reserve := bal.Sub(bal, staked)
	if reserve.Sign() < 0 {
		reserve.SetInt64(0)
	}
	return reserve, nil
}

// Distribution is what an issuance pays at the current state.
type Distribution struct {
	Payouts Payouts
	Total   *big.Int
	Reserve *big.Int
}

// Shortfall returns how much the reserve misses to cover the total, zero when covered.
func (d *Distribution) Shortfall() *big.Int {
	if d.Total.Cmp(d.Reserve) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(d.Total, d.Reserve)
}

// ComputePayouts values the stakes of every staker, reading each feed once. Nothing is paid.
func (f *Farm) ComputePayouts(ctx context.Context) (*Distribution, error) {
	stakers, err := f.Stakers()
	if err != nil {
		return nil, err
	}
	tokens, err := f.AllowedTokens()
	if err != nil {
		return nil, err
	}

	var staked []thor.Address
	for _, token := range tokens {
		total, err := f.TotalStaked(token)
		if err != nil {
			return nil, err
		}
		if total.Sign() > 0 {
			staked = append(staked, token)
		}
	}
	prices, err := f.prices(ctx, staked)
	if err != nil {
		return nil, err
	}

	var payouts Payouts
	for _, staker := range stakers {
		stakes, err := f.stakes(staker, staked)
		if err != nil {
			return nil, err
		}
		if value := totalValue(stakes, prices); value.Sign() > 0 {
			payouts = append(payouts, &Payout{Staker: staker, Amount: value})
		}
	}

	reserve, err := f.Reserve()
	if err != nil {
		return nil, err
	}
	return &Distribution{Payouts: payouts, Total: payouts.Total(), Reserve: reserve}, nil
}

// IssueRewardTokens pays every staker its total staked value in reward tokens. Owner only.
// All values are computed before any transfer, the whole issuance fails when the reserve
// cannot cover it.
func (f *Farm) IssueRewardTokens(ctx context.Context, caller thor.Address) (Payouts, error) {
	if err := f.onlyOwner(caller); err != nil {
		return nil, err
	}
	d, err := f.ComputePayouts(ctx)
	if err != nil {
		return nil, err
	}
	if d.Shortfall().Sign() > 0 {
		return nil, reverts.Newf(reverts.ErrInsufficientReserve, "reserve %v cannot cover rewards %v", d.Reserve, d.Total)
	}
	payouts := d.Payouts

	rewardToken, err := f.RewardToken()
	if err != nil {
		return nil, err
	}
	if err := f.atomic(func() error {
		reward := f.token(rewardToken)
		for _, p := range payouts {
			if err := reward.Transfer(f.Address(), p.Staker, p.Amount); err != nil {
				return err
			}
			if err := f.context.Emit(eventRewardIssued, p.Staker, p.Amount); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	logger.Debug("rewards issued", "stakers", len(payouts), "total", d.Total)
	return payouts, nil
}
