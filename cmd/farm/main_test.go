// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"math"
	"math/big"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/api"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/test/testfarm"
	"github.com/vechain/tokenfarm/thor"
)

func TestReadIntFromUInt64Flag(t *testing.T) {
	got, err := readIntFromUInt64Flag(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = readIntFromUInt64Flag(uint64(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = readIntFromUInt64Flag(uint64(math.MaxInt) + 1)
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		v        *big.Int
		decimals uint8
		want     string
	}{
		{nil, 18, "0"},
		{big.NewInt(0), 18, "0"},
		{thor.ToWei(2000), 18, "2000"},
		{big.NewInt(1), 18, "0.000000000000000001"},
		{big.NewInt(1500), 3, "1.5"},
		{big.NewInt(7), 0, "7"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.v, tt.decimals))
	}
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 16, normalizeCacheSize(1))
	assert.LessOrEqual(t, normalizeCacheSize(math.MaxInt32), math.MaxInt32)
}

func TestMakeName(t *testing.T) {
	got := makeName("Farm solo")
	assert.True(t, strings.HasPrefix(got, "Farm solo/"+fullVersion()+"/"))
	assert.True(t, strings.HasSuffix(got, "/"+runtime.Version()))
}

func TestDefaultConfigCommand(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	err = newApp().Run([]string{"farm", "default-config"})
	os.Stdout = orig
	w.Close()
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	require.NoError(t, err)

	cfg, err := deploy.ParseConfig(buf.Bytes())
	require.NoError(t, err)
	def := deploy.DefaultConfig()
	assert.Equal(t, def.Network, cfg.Network)
	assert.Equal(t, def.Bindings, cfg.Bindings)
	assert.Equal(t, 0, def.InitialSupply.Int().Cmp(cfg.InitialSupply.Int()))
}

func TestLiveRequiresConfig(t *testing.T) {
	dir := t.TempDir()
	err := newApp().Run([]string{"farm", "--data-dir", dir, "--verbosity", "0"})
	assert.ErrorContains(t, err, "config flag not specified")

	path := filepath.Join(dir, "solo.yaml")
	data, err := deploy.DefaultConfig().Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	err = newApp().Run([]string{"farm", "--data-dir", dir, "--verbosity", "0", "--config", path})
	assert.ErrorContains(t, err, "use the solo command")
}

func runClient(t *testing.T, url string, args ...string) string {
	var buf bytes.Buffer
	stdout = &buf
	defer func() { stdout = os.Stdout }()

	cmd := append([]string{"farm", args[0], "--api-url", url}, args[1:]...)
	require.NoError(t, newApp().Run(cmd))
	return buf.String()
}

func TestClientCommands(t *testing.T) {
	f, err := testfarm.New()
	require.NoError(t, err)
	defer f.Close()

	handler, closeAPI := api.New(f.Ledger(), api.Options{AllowedOrigins: "*"})
	defer closeAPI()
	ts := httptest.NewServer(handler)
	defer ts.Close()

	user := f.Account(1)
	require.NoError(t, f.Fund(f.Token("fau_token"), user, thor.ToWei(10)))

	out := runClient(t, ts.URL, "balance", "--token", "fau_token", "--account", user.String())
	assert.Equal(t, "10 DAI\n", out)

	out = runClient(t, ts.URL, "stake", "--token", "fau_token", "--amount", "4 ether", "--account", user.String())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "approve committed"))
	assert.True(t, strings.HasPrefix(lines[1], "stake committed"))

	// 4 DAI at 2000 per unit
	out = runClient(t, ts.URL, "value", "--account", user.String())
	assert.Contains(t, out, f.Token("fau_token").String()+" 4\n")
	assert.Contains(t, out, "total value 8000\n")

	out = runClient(t, ts.URL, "issue-rewards")
	assert.Contains(t, out, user.String()+" 8000\n")
	assert.Contains(t, out, "total 8000\n")

	out = runClient(t, ts.URL, "balance", "--account", user.String())
	assert.Equal(t, "8000 VIT\n", out)

	out = runClient(t, ts.URL, "unstake", "--token", f.Token("fau_token").String(), "--account", user.String())
	assert.True(t, strings.HasPrefix(out, "unstake committed"))

	out = runClient(t, ts.URL, "balance", "--token", "fau_token", "--account", user.String())
	assert.Equal(t, "10 DAI\n", out)

	out = runClient(t, ts.URL, "approve", "--token", "weth_token", "--amount", "5", "--spender", f.Account(2).String())
	assert.True(t, strings.HasPrefix(out, "approve committed"))
}

func TestClientCommandErrors(t *testing.T) {
	f, err := testfarm.New()
	require.NoError(t, err)
	defer f.Close()

	handler, closeAPI := api.New(f.Ledger(), api.Options{AllowedOrigins: "*"})
	defer closeAPI()
	ts := httptest.NewServer(handler)
	defer ts.Close()

	app := newApp()
	assert.ErrorContains(t, app.Run([]string{"farm", "balance", "--api-url", ts.URL, "--token", "nope"}), "unknown token")
	assert.ErrorContains(t, app.Run([]string{"farm", "stake", "--api-url", ts.URL}), "amount flag not specified")
	assert.Error(t, app.Run([]string{"farm", "issue-rewards", "--api-url", ts.URL, "--account", f.Account(1).String()}))
}
