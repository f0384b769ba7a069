// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/vechain/tokenfarm/thor"
)

// Event is a log emitted by a native contract, laid out like an EVM log.
type Event struct {
	Address thor.Address   // emitting contract
	Topics  []thor.Bytes32 // topics[0] is the event signature hash
	Data    []byte         // abi encoded non-indexed fields
}
