// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregator

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/lvldb"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.NewStater(db).NewState()
}

func TestAggregator(t *testing.T) {
	st := newState(t)
	now := time.Unix(1_700_000_000, 0)
	agg := New(thor.BytesToAddress([]byte("eth_usd")), st)

	_, err := agg.LatestRoundData()
	assert.Error(t, err)

	require.NoError(t, agg.Initialize(thor.PriceFeedDecimals, thor.InitialPriceFeedValue, now))
	assert.True(t, errors.Is(agg.Initialize(8, big.NewInt(1), now), reverts.ErrInvalidOperation))

	decimals, err := agg.Decimals()
	require.NoError(t, err)
	assert.Equal(t, uint8(18), decimals)

	rd, err := agg.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), rd.RoundID)
	assert.Equal(t, thor.InitialPriceFeedValue, rd.Answer)
	assert.Equal(t, now, rd.UpdatedAt)

	later := now.Add(time.Minute)
	require.NoError(t, agg.UpdateAnswer(thor.ToWei(2500), later))
	rd, err = agg.LatestRoundData()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), rd.RoundID)
	assert.Equal(t, thor.ToWei(2500), rd.Answer)
	assert.Equal(t, later, rd.UpdatedAt)

	first, err := agg.GetRoundData(big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, thor.InitialPriceFeedValue, first.Answer)

	_, err = agg.GetRoundData(big.NewInt(3))
	assert.True(t, errors.Is(err, reverts.ErrInvalidOperation))

	assert.True(t, reverts.IsRevertErr(agg.UpdateAnswer(big.NewInt(-1), later)))

	events := st.Events()
	require.Len(t, events, 2)
	decoded, err := eventAnswerUpdated.Decode(events[1].Topics, events[1].Data)
	require.NoError(t, err)
	assert.Equal(t, thor.ToWei(2500), decoded["current"])
	assert.Equal(t, big.NewInt(2), decoded["roundId"])
}

func TestOracle(t *testing.T) {
	st := newState(t)
	now := time.Unix(1_700_000_000, 0)
	feed := thor.BytesToAddress([]byte("dai_usd"))
	require.NoError(t, New(feed, st).Initialize(18, thor.InitialPriceFeedValue, now))

	o := NewOracle(st)
	p, err := o.LatestPrice(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, thor.InitialPriceFeedValue, p.Answer)
	assert.Equal(t, uint8(18), p.Decimals)
	assert.Equal(t, big.NewInt(1), p.RoundID)

	_, err = o.LatestPrice(context.Background(), thor.Address{9})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.LatestPrice(ctx, feed)
	assert.ErrorIs(t, err, context.Canceled)
}
