// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/thor"
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Values outside [0, 2^256) are rejected, and arithmetic reverts on overflow like solidity >= 0.8.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, slot thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) load() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) store(v *uint256.Int) {
	u.context.state.SetStorage(u.context.address, u.pos, thor.Bytes32(v.Bytes32()))
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.load()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) Set(value *big.Int) error {
	v, err := ToUint256(value)
	if err != nil {
		return err
	}
	u.store(v)
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	delta, err := ToUint256(value)
	if err != nil {
		return err
	}
	v, err := u.load()
	if err != nil {
		return err
	}
	if _, overflow := v.AddOverflow(v, delta); overflow {
		return reverts.Newf(reverts.ErrInvalidOperation, "uint256 overflow")
	}
	u.store(v)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	delta, err := ToUint256(value)
	if err != nil {
		return err
	}
	v, err := u.load()
	if err != nil {
		return err
	}
	if _, underflow := v.SubOverflow(v, delta); underflow {
		return reverts.Newf(reverts.ErrInvalidOperation, "uint256 underflow")
	}
	u.store(v)
	return nil
}

// ToUint256 converts a big integer, rejecting negative or oversized values.
func ToUint256(value *big.Int) (*uint256.Int, error) {
	if value == nil {
		return new(uint256.Int), nil
	}
	if value.Sign() < 0 {
		return nil, reverts.Newf(reverts.ErrInvalidOperation, "negative uint256 %v", value)
	}
	v, overflow := uint256.FromBig(value)
	if overflow {
		return nil, reverts.Newf(reverts.ErrInvalidOperation, "uint256 overflow")
	}
	return v, nil
}
