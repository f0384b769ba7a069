// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

// Context binds a native contract to its address and the state it runs on.
type Context struct {
	address thor.Address
	state   *state.State
}

func NewContext(address thor.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() thor.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Emit encodes and journals an event emitted by the contract.
func (c *Context) Emit(ev *Event, args ...any) error {
	topics, data, err := ev.Encode(args...)
	if err != nil {
		return err
	}
	c.state.AddEvent(&state.Event{
		Address: c.address,
		Topics:  topics,
		Data:    data,
	})
	return nil
}
