// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"math/big"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/thor"
)

// AddAllowedToken appends token to the allowed tokens. Owner only, a token is listed at most once.
func (f *Farm) AddAllowedToken(caller, token thor.Address) error {
	if err := f.onlyOwner(caller); err != nil {
		return err
	}
	if token.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "zero token address")
	}
	if ok, err := f.IsAllowed(token); err != nil {
		return err
	} else if ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "token %v already allowed", token)
	}
	index, err := f.allowedTokens.Push(token)
	if err != nil {
		return err
	}
	if err := f.allowedIndex.Set(token, index+1); err != nil {
		return err
	}
	logger.Debug("allowed token added", "token", token, "index", index)
	return f.context.Emit(eventAllowedTokenAdded, token, new(big.Int).SetUint64(index))
}

// SetPriceFeed binds token to feed, replacing any previous binding. Owner only.
func (f *Farm) SetPriceFeed(caller, token, feed thor.Address) error {
	if err := f.onlyOwner(caller); err != nil {
		return err
	}
	if feed.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "zero feed address")
	}
	if err := f.priceFeeds.Set(token, feed); err != nil {
		return err
	}
	return f.context.Emit(eventPriceFeedSet, token, feed)
}

// AllowedTokens returns the allowed tokens in insertion order.
func (f *Farm) AllowedTokens() ([]thor.Address, error) {
	return f.allowedTokens.All()
}

func (f *Farm) AllowedTokenAt(i uint64) (thor.Address, error) {
	return f.allowedTokens.Get(i)
}

func (f *Farm) IsAllowed(token thor.Address) (bool, error) {
	index, err := f.allowedIndex.Get(token)
	if err != nil {
		return false, err
	}
	return index > 0, nil
}

// PriceFeedOf returns the feed bound to token, the zero address if none.
func (f *Farm) PriceFeedOf(token thor.Address) (thor.Address, error) {
	return f.priceFeeds.Get(token)
}
