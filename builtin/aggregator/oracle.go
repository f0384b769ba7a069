// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregator

import (
	"context"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

// NewOracle reads the native aggregators living in st.
func NewOracle(st *state.State) oracle.Oracle {
	return oracle.Func(func(ctx context.Context, feed thor.Address) (*oracle.Price, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		agg := New(feed, st)
		ok, err := agg.IsInitialized()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Errorf("no aggregator at %v", feed)
		}
		decimals, err := agg.Decimals()
		if err != nil {
			return nil, err
		}
		rd, err := agg.LatestRoundData()
		if err != nil {
			return nil, err
		}
		return &oracle.Price{
			Answer:    rd.Answer,
			Decimals:  decimals,
			RoundID:   rd.RoundID,
			UpdatedAt: rd.UpdatedAt,
		}, nil
	})
}
