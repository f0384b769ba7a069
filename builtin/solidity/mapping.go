// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"bytes"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tokenfarm/thor"
)

type Key interface {
	Bytes() []byte
}

// emptyString is the rlp encoding of zero values (0, false, empty bytes).
var emptyString = []byte{0x80}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
type Mapping[K Key, V any] struct {
	context *Context
	basePos thor.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos thor.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) thor.Bytes32 {
	return thor.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value of key, the zero value if never set.
// A pointer V is never nil.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		return decodeValue(raw, &value)
	})
	return
}

// Set stores value at key. Zero values clear the slot.
func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		return encodeValue(value)
	})
}

func decodeValue[V any](raw []byte, value *V) error {
	if t := reflect.TypeOf(*value); t != nil && t.Kind() == reflect.Ptr {
		*value = reflect.New(t.Elem()).Interface().(V)
	}
	if len(raw) == 0 {
		return nil
	}
	return rlp.DecodeBytes(raw, value)
}

func encodeValue[V any](value V) ([]byte, error) {
	val, err := rlp.EncodeToBytes(value)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(val, emptyString) {
		return nil, nil
	}
	return val, nil
}
