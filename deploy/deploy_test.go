// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/builtin/aggregator"
	"github.com/vechain/tokenfarm/builtin/farm"
	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/token"
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

func TestDeploy(t *testing.T) {
	st := newState(t)
	deployer := Deployer()
	now := time.Unix(1_700_000_000, 0)

	d, err := Deploy(st, DefaultConfig(), deployer, now)
	require.NoError(t, err)

	// feeds, mock tokens, reward token then farm
	assert.Equal(t, thor.CreateContractAddress(deployer, 0), d.Feeds[0].Address)
	assert.Equal(t, thor.CreateContractAddress(deployer, 1), d.Feeds[1].Address)
	assert.Equal(t, thor.CreateContractAddress(deployer, 2), d.Tokens[0].Address)
	assert.Equal(t, thor.CreateContractAddress(deployer, 3), d.Tokens[1].Address)
	assert.Equal(t, thor.CreateContractAddress(deployer, 4), d.RewardToken)
	assert.Equal(t, thor.CreateContractAddress(deployer, 5), d.Farm)

	reward := token.New(d.RewardToken, st)
	bal, err := reward.BalanceOf(deployer)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(thor.KeptAmount))
	bal, err = reward.BalanceOf(d.Farm)
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(thor.ToWei(999_000_000)))

	f := farm.New(d.Farm, st, aggregator.NewOracle(st))
	owner, err := f.Owner()
	require.NoError(t, err)
	assert.Equal(t, deployer, owner)

	weth, _ := d.Token("weth_token")
	fau, _ := d.Token("fau_token")
	tokens, err := f.AllowedTokens()
	require.NoError(t, err)
	assert.Equal(t, []thor.Address{d.RewardToken, fau, weth}, tokens)

	ethFeed, _ := d.Feed("eth_usd_price_feed")
	daiFeed, _ := d.Feed("dai_usd_price_feed")
	for tok, want := range map[thor.Address]thor.Address{d.RewardToken: daiFeed, fau: daiFeed, weth: ethFeed} {
		feed, err := f.PriceFeedOf(tok)
		require.NoError(t, err)
		assert.Equal(t, want, feed)
	}

	price, decimals, err := f.GetTokenValue(context.Background(), d.RewardToken)
	require.NoError(t, err)
	assert.Equal(t, 0, price.Cmp(thor.InitialPriceFeedValue))
	assert.Equal(t, thor.PriceFeedDecimals, decimals)
	assert.NoError(t, Check(context.Background(), d, f))

	loaded, err := Load(st)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)

	_, err = Deploy(st, DefaultConfig(), deployer, now)
	assert.Error(t, err, "deploys once")
}

func TestDeployNothingKeptOnFailure(t *testing.T) {
	st := newState(t)
	cfg := DefaultConfig()

	failing := NewBuilder(cfg).
		Deployer(Deployer()).
		State(func(*state.State, *Deployment) error { return errors.New("boom") })
	_, err := failing.Build(st)
	assert.Error(t, err)

	d, err := Load(st)
	require.NoError(t, err)
	assert.Nil(t, d)
	assert.Empty(t, st.Events())

	_, err = Deploy(st, cfg, Deployer(), time.Now())
	assert.NoError(t, err)
}

func TestDeployLiveFeeds(t *testing.T) {
	st := newState(t)
	cfg := DefaultConfig()
	cfg.Network = "sepolia"
	cfg.Feeds = []FeedConfig{
		{Name: "eth_usd_price_feed", Address: "0x694AA1769357215DE4FAC081bf1f309aDC325306"},
		{Name: "dai_usd_price_feed", Address: "0x14866185B1962B63C3Ea9E03Bc1da838bab34C19"},
	}

	d, err := Deploy(st, cfg, Deployer(), time.Now())
	require.NoError(t, err)
	eth, _ := d.Feed("eth_usd_price_feed")
	assert.Equal(t, thor.MustParseAddress("0x694AA1769357215DE4FAC081bf1f309aDC325306"), eth)
	assert.Equal(t, thor.CreateContractAddress(Deployer(), 0), d.Tokens[0].Address, "no mock feed deployed")

	// without a live oracle the feeds cannot be read
	f := farm.New(d.Farm, st, nil)
	_, _, err = f.GetTokenValue(context.Background(), d.RewardToken)
	assert.Error(t, err)
}

func TestDeployOwnerOnlyAfterwards(t *testing.T) {
	st := newState(t)
	d, err := Deploy(st, DefaultConfig(), Deployer(), time.Now())
	require.NoError(t, err)

	f := farm.New(d.Farm, st, nil)
	err = f.AddAllowedToken(DevAccounts()[1].Address, thor.BytesToAddress([]byte("x")))
	assert.True(t, errors.Is(err, reverts.ErrUnauthorized))
}

func TestDevAccounts(t *testing.T) {
	accs := DevAccounts()
	require.Len(t, accs, 10)
	assert.Equal(t, thor.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"), accs[0].Address)
	assert.Equal(t, accs[0].Address, Deployer())
	assert.NotEqual(t, accs[0].Address, accs[1].Address)
}
