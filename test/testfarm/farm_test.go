// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testfarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/thor"
)

func TestFarm(t *testing.T) {
	f, err := New()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, f.Account(0), f.Owner())
	reward := f.Token(deploy.RewardTokenName)
	assert.Equal(t, f.Deployment().RewardToken, reward)

	require.NoError(t, f.Fund(reward, f.Account(1), thor.ToWei(10)))
	r, err := f.Stake(f.Account(1), reward, thor.ToWei(10))
	require.NoError(t, err)
	assert.Equal(t, f.Account(1), r.Caller)

	bal, err := f.Ledger().StakingBalance(reward, f.Account(1))
	require.NoError(t, err)
	assert.Equal(t, 0, bal.Cmp(thor.ToWei(10)))

	assert.Panics(t, func() { f.Token("nope") })
}
