// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"context"
	"math/big"

	"github.com/vechain/tokenfarm/builtin/farm"
	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/token"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

// TokenInfo describes a deployed token.
type TokenInfo struct {
	Address     thor.Address
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
}

// Summary describes the farm at a revision.
type Summary struct {
	Revision      uint64
	Address       thor.Address
	Owner         thor.Address
	RewardToken   thor.Address
	Reserve       *big.Int
	AllowedTokens []thor.Address
	StakersCount  uint64
}

// StakerInfo describes the stake of one account.
type StakerInfo struct {
	Account    thor.Address
	Balances   map[thor.Address]*big.Int // allowed token -> staked amount, positive only
	Unique     uint64
	IsStaker   bool
	TotalValue *big.Int // nil unless valued
}

// view runs fn on a snapshot of the latest revision. Views may run concurrently,
// but not with a commit.
func view[T any](l *Ledger, fn func(st *state.State, rev uint64) (T, error)) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var zero T
	snap, err := l.stater.NewSnapshot()
	if err != nil {
		return zero, err
	}
	defer snap.Release()
	return fn(snap.State, snap.Revision)
}

func (l *Ledger) checkToken(st *state.State, addr thor.Address) (*token.Token, error) {
	t := token.New(addr, st)
	ok, err := t.IsInitialized()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reverts.Newf(reverts.ErrInvalidOperation, "no token at %v", addr)
	}
	return t, nil
}

// TokenInfo returns the metadata and supply of a token.
func (l *Ledger) TokenInfo(addr thor.Address) (*TokenInfo, error) {
	return view(l, func(st *state.State, _ uint64) (*TokenInfo, error) {
		t, err := l.checkToken(st, addr)
		if err != nil {
			return nil, err
		}
		info := &TokenInfo{Address: addr}
		if info.Name, err = t.Name(); err != nil {
			return nil, err
		}
		if info.Symbol, err = t.Symbol(); err != nil {
			return nil, err
		}
		if info.Decimals, err = t.Decimals(); err != nil {
			return nil, err
		}
		if info.TotalSupply, err = t.TotalSupply(); err != nil {
			return nil, err
		}
		return info, nil
	})
}

// BalanceOf returns the token balance of account.
func (l *Ledger) BalanceOf(tokenAddr, account thor.Address) (*big.Int, error) {
	return view(l, func(st *state.State, _ uint64) (*big.Int, error) {
		t, err := l.checkToken(st, tokenAddr)
		if err != nil {
			return nil, err
		}
		return t.BalanceOf(account)
	})
}

// Allowance returns what spender may still transfer on behalf of owner.
func (l *Ledger) Allowance(tokenAddr, owner, spender thor.Address) (*big.Int, error) {
	return view(l, func(st *state.State, _ uint64) (*big.Int, error) {
		t, err := l.checkToken(st, tokenAddr)
		if err != nil {
			return nil, err
		}
		return t.Allowance(owner, spender)
	})
}

// Summary returns the state of the farm.
func (l *Ledger) Summary() (*Summary, error) {
	return view(l, func(st *state.State, rev uint64) (*Summary, error) {
		f := l.farm(st)
		s := &Summary{Revision: rev, Address: f.Address()}
		var err error
		if s.Owner, err = f.Owner(); err != nil {
			return nil, err
		}
		if s.RewardToken, err = f.RewardToken(); err != nil {
			return nil, err
		}
		if s.Reserve, err = f.Reserve(); err != nil {
			return nil, err
		}
		if s.AllowedTokens, err = f.AllowedTokens(); err != nil {
			return nil, err
		}
		if s.StakersCount, err = f.StakersCount(); err != nil {
			return nil, err
		}
		return s, nil
	})
}

// AllowedTokens returns the stakable tokens in registration order.
func (l *Ledger) AllowedTokens() ([]thor.Address, error) {
	return view(l, func(st *state.State, _ uint64) ([]thor.Address, error) {
		return l.farm(st).AllowedTokens()
	})
}

// PriceFeedOf returns the feed bound to token, zero if none.
func (l *Ledger) PriceFeedOf(tokenAddr thor.Address) (thor.Address, error) {
	return view(l, func(st *state.State, _ uint64) (thor.Address, error) {
		return l.farm(st).PriceFeedOf(tokenAddr)
	})
}

// PriceFeedBinding pairs an allowed token with its bound feed.
type PriceFeedBinding struct {
	Token thor.Address
	Feed  thor.Address // zero if none
}

// PriceFeedBindings returns every allowed token with its feed, read from one revision.
func (l *Ledger) PriceFeedBindings() ([]PriceFeedBinding, error) {
	return view(l, func(st *state.State, _ uint64) ([]PriceFeedBinding, error) {
		f := l.farm(st)
		tokens, err := f.AllowedTokens()
		if err != nil {
			return nil, err
		}
		bindings := make([]PriceFeedBinding, 0, len(tokens))
		for _, tok := range tokens {
			feed, err := f.PriceFeedOf(tok)
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, PriceFeedBinding{Token: tok, Feed: feed})
		}
		return bindings, nil
	})
}

// StakingBalance returns the amount of token staked by account.
func (l *Ledger) StakingBalance(tokenAddr, account thor.Address) (*big.Int, error) {
	return view(l, func(st *state.State, _ uint64) (*big.Int, error) {
		return l.farm(st).StakingBalance(tokenAddr, account)
	})
}

// UniqueTokensStaked returns the count of distinct tokens staked by account.
func (l *Ledger) UniqueTokensStaked(account thor.Address) (uint64, error) {
	return view(l, func(st *state.State, _ uint64) (uint64, error) {
		return l.farm(st).UniqueTokensStaked(account)
	})
}

// Stakers returns every account that ever staked, in first stake order.
func (l *Ledger) Stakers() ([]thor.Address, error) {
	return view(l, func(st *state.State, _ uint64) ([]thor.Address, error) {
		return l.farm(st).Stakers()
	})
}

// StakerInfo returns the stake of account. When valued, the total value is read from the feeds.
func (l *Ledger) StakerInfo(ctx context.Context, account thor.Address, valued bool) (*StakerInfo, error) {
	return view(l, func(st *state.State, _ uint64) (*StakerInfo, error) {
		f := l.farm(st)
		info := &StakerInfo{Account: account, Balances: make(map[thor.Address]*big.Int)}

		tokens, err := f.AllowedTokens()
		if err != nil {
			return nil, err
		}
		for _, tok := range tokens {
			bal, err := f.StakingBalance(tok, account)
			if err != nil {
				return nil, err
			}
			if bal.Sign() > 0 {
				info.Balances[tok] = bal
			}
		}
		if info.Unique, err = f.UniqueTokensStaked(account); err != nil {
			return nil, err
		}
		if info.IsStaker, err = f.IsStaker(account); err != nil {
			return nil, err
		}
		if valued {
			if info.TotalValue, err = f.GetStakerTotalValue(ctx, account); err != nil {
				return nil, err
			}
		}
		return info, nil
	})
}

// TokenValue returns the latest price of token and its decimals.
func (l *Ledger) TokenValue(ctx context.Context, tokenAddr thor.Address) (*big.Int, uint8, error) {
	type value struct {
		price    *big.Int
		decimals uint8
	}
	v, err := view(l, func(st *state.State, _ uint64) (*value, error) {
		price, decimals, err := l.farm(st).GetTokenValue(ctx, tokenAddr)
		if err != nil {
			return nil, err
		}
		return &value{price, decimals}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return v.price, v.decimals, nil
}

// StakerTotalValue returns the USD value of everything account staked.
func (l *Ledger) StakerTotalValue(ctx context.Context, account thor.Address) (*big.Int, error) {
	return view(l, func(st *state.State, _ uint64) (*big.Int, error) {
		return l.farm(st).GetStakerTotalValue(ctx, account)
	})
}

// Reserve returns the reward tokens available for payouts.
func (l *Ledger) Reserve() (*big.Int, error) {
	return view(l, func(st *state.State, _ uint64) (*big.Int, error) {
		return l.farm(st).Reserve()
	})
}

// LatestPrice reads a feed directly.
func (l *Ledger) LatestPrice(ctx context.Context, feed thor.Address) (*oracle.Price, error) {
	return view(l, func(st *state.State, _ uint64) (*oracle.Price, error) {
		p, err := l.feeds(st).LatestPrice(ctx, feed)
		if err != nil {
			return nil, oracle.Unavailable(feed, err)
		}
		return p, nil
	})
}

// PreviewRewards computes what IssueRewardTokens would pay now, without paying.
// A positive shortfall of the result means issuance would be rejected.
func (l *Ledger) PreviewRewards(ctx context.Context) (*farm.Distribution, error) {
	return view(l, func(st *state.State, _ uint64) (*farm.Distribution, error) {
		return l.farm(st).ComputePayouts(ctx)
	})
}

// CheckFeeds reads the price of every allowed token, failing on the first feed that doesn't answer.
func (l *Ledger) CheckFeeds(ctx context.Context) error {
	_, err := view(l, func(st *state.State, _ uint64) (struct{}, error) {
		return struct{}{}, deploy.Check(ctx, l.deployment, l.farm(st))
	})
	return err
}
