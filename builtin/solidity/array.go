// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/thor"
)

// Array is a dynamic array, similar to `T[]` in Solidity.
// The length lives at the base slot and element i at blake2b(base, i).
type Array[V any] struct {
	context *Context
	basePos thor.Bytes32
	length  *Uint256
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{context: context, basePos: pos, length: NewUint256(context, pos)}
}

func (a *Array[V]) position(i uint64) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], i)
	return thor.Blake2b(a.basePos.Bytes(), b[:])
}

func (a *Array[V]) Len() (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Get returns the element at i, reverting when out of range.
func (a *Array[V]) Get(i uint64) (value V, err error) {
	n, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= n {
		return value, reverts.Newf(reverts.ErrInvalidOperation, "index %d out of range %d", i, n)
	}
	err = a.context.state.DecodeStorage(a.context.address, a.position(i), func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.context.state.EncodeStorage(a.context.address, a.position(n), func() ([]byte, error) {
		return encodeValue(value)
	}); err != nil {
		return 0, err
	}
	if err := a.length.Set(new(big.Int).SetUint64(n + 1)); err != nil {
		return 0, err
	}
	return n, nil
}

// All returns every element in order.
func (a *Array[V]) All() ([]V, error) {
	n, err := a.Len()
	if err != nil {
		return nil, err
	}
	values := make([]V, 0, n)
	for i := range n {
		var v V
		if err := a.context.state.DecodeStorage(a.context.address, a.position(i), func(raw []byte) error {
			return decodeValue(raw, &v)
		}); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
