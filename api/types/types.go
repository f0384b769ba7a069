// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package types holds the JSON bodies of the API, shared with farmclient.
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

// NewAmount converts v for json marshal.
func NewAmount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// Int converts an amount back, nil stays nil.
func Int(a *math.HexOrDecimal256) *big.Int {
	if a == nil {
		return nil
	}
	return (*big.Int)(a)
}

// Event is a contract event in json.
type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Receipt is returned by every operation.
type Receipt struct {
	ID       thor.Bytes32 `json:"id"`
	Op       string       `json:"op"`
	Caller   thor.Address `json:"caller"`
	Revision uint64       `json:"revision"`
	Time     uint64       `json:"time"`
	Events   []*Event     `json:"events"`
}

func convertEvent(ev *state.Event) *Event {
	return &Event{
		Address: ev.Address,
		Topics:  ev.Topics,
		Data:    ev.Data,
	}
}

// ConvertReceipt converts a ledger receipt.
func ConvertReceipt(r *ledger.Receipt) *Receipt {
	events := make([]*Event, 0, len(r.Events))
	for _, ev := range r.Events {
		events = append(events, convertEvent(ev))
	}
	return &Receipt{
		ID:       r.ID,
		Op:       r.Op,
		Caller:   r.Caller,
		Revision: r.Revision,
		Time:     r.Time,
		Events:   events,
	}
}
