// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/ledger"
)

type Node struct {
	ledger *ledger.Ledger
}

func New(ledger *ledger.Ledger) *Node {
	return &Node{
		ledger,
	}
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, _ *http.Request) error {
	rev, err := n.ledger.Revision()
	if err != nil {
		return err
	}
	d := n.ledger.Deployment()
	return utils.WriteJSON(w, &types.Node{
		Network:     d.Network,
		Revision:    rev,
		Deployer:    d.Deployer,
		Farm:        d.Farm,
		RewardToken: d.RewardToken,
		Tokens:      d.Tokens,
		Feeds:       d.Feeds,
		DeployedAt:  d.Time,
		LogDB:       n.ledger.LogDB().Path(),
	})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("node_get_info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
