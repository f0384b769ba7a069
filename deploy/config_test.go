// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deploy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/thor"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1000", "1000", false},
		{"2000 ether", "2000000000000000000000", false},
		{"  1 ether ", "1000000000000000000", false},
		{"", "", true},
		{"-1", "", true},
		{"1 gwei", "", true},
		{"1.5 ether", "", true},
		{"1 ether extra", "", true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String())
	}
}

func TestDefaultConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "initialSupply: 1000000000 ether")

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.InitialSupply.Int().Cmp(thor.InitialSupply))
	assert.Equal(t, 0, parsed.KeptAmount.Int().Cmp(thor.KeptAmount))
	assert.Equal(t, cfg.Bindings, parsed.Bindings)
	assert.True(t, parsed.IsSolo())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "farm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
network: sepolia
keptAmount: 10 ether
feeds:
  - name: eth_usd_price_feed
    address: "0x694AA1769357215DE4FAC081bf1f309aDC325306"
tokens:
  - name: weth_token
    label: Mock WETH
    symbol: WETH
    decimals: 18
    supply: 1000 ether
bindings:
  - token: weth_token
    feed: eth_usd_price_feed
  - token: dapp_token
    feed: eth_usd_price_feed
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.False(t, cfg.IsSolo())
	assert.Equal(t, 0, cfg.InitialSupply.Int().Cmp(thor.InitialSupply), "defaulted")
	assert.Equal(t, 0, cfg.KeptAmount.Int().Cmp(thor.ToWei(10)))
	assert.Equal(t, RewardTokenName, cfg.RewardToken.Name)
	assert.Len(t, cfg.Bindings, 2)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"kept exceeds supply", func(c *Config) { c.KeptAmount = NewAmount(thor.ToWei(2_000_000_000)) }},
		{"unknown token", func(c *Config) { c.Bindings = append(c.Bindings, Binding{"nope", "eth_usd_price_feed"}) }},
		{"unknown feed", func(c *Config) { c.Bindings = append(c.Bindings, Binding{"weth_token", "nope"}) }},
		{"duplicated feed", func(c *Config) { c.Feeds = append(c.Feeds, c.Feeds[0]) }},
		{"duplicated token", func(c *Config) { c.Tokens = append(c.Tokens, c.Tokens[0]) }},
		{"mock feed on live network", func(c *Config) { c.Network = "sepolia" }},
		{"bad feed address", func(c *Config) { c.Feeds[0].Address = "0x1234" }},
		{"renamed reward token", func(c *Config) { c.RewardToken.Name = "vit" }},
		{"zero initial answer", func(c *Config) { c.Feeds[0].InitialAnswer = NewAmount(thor.ToWei(0)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
