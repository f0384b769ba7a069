// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/thor"
)

// Node describes the serving node and its deployment.
type Node struct {
	Network     string            `json:"network"`
	Revision    uint64            `json:"revision"`
	Deployer    thor.Address      `json:"deployer"`
	Farm        thor.Address      `json:"farm"`
	RewardToken thor.Address      `json:"rewardToken"`
	Tokens      []deploy.Contract `json:"tokens"`
	Feeds       []deploy.Contract `json:"feeds"`
	DeployedAt  uint64            `json:"deployedAt"`
	LogDB       string            `json:"logdb"`
}
