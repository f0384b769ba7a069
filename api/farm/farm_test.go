// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/test/testfarm"
	"github.com/vechain/tokenfarm/thor"
)

func newServer(t *testing.T, f *testfarm.Farm) *httptest.Server {
	router := mux.NewRouter()
	New(f.Ledger()).Mount(router, "/farm")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpGet(t *testing.T, url string, v any) {
	res, err := http.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, v))
}

func TestAllowedTokens(t *testing.T) {
	f, err := testfarm.New()
	require.NoError(t, err)
	defer f.Close()
	ts := newServer(t, f)

	var got []*types.AllowedToken
	httpGet(t, ts.URL+"/farm/allowed-tokens", &got)

	want := []*types.AllowedToken{
		{Token: f.Deployment().RewardToken, Feed: f.Feed("dai_usd_price_feed")},
		{Token: f.Token("fau_token"), Feed: f.Feed("dai_usd_price_feed")},
		{Token: f.Token("weth_token"), Feed: f.Feed("eth_usd_price_feed")},
	}
	assert.Equal(t, want, got)
}

func TestPreviewRewardsShortfall(t *testing.T) {
	cfg := deploy.DefaultConfig()
	// leave a single token in the reserve
	cfg.KeptAmount = deploy.NewAmount(new(big.Int).Sub(thor.InitialSupply, thor.Ether))
	f, err := testfarm.NewBuilder().WithConfig(cfg).Build()
	require.NoError(t, err)
	defer f.Close()
	ts := newServer(t, f)

	_, err = f.Stake(f.Owner(), f.Token("weth_token"), thor.Ether)
	require.NoError(t, err)

	var preview types.Rewards
	httpGet(t, ts.URL+"/farm/rewards", &preview)
	require.Len(t, preview.Payouts, 1)
	assert.Equal(t, 0, types.Int(preview.Reserve).Cmp(thor.Ether))

	want := new(big.Int).Sub(types.Int(preview.Total), thor.Ether)
	assert.Equal(t, 0, types.Int(preview.Shortfall).Cmp(want))
	assert.Positive(t, want.Sign())
}
