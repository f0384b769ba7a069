// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tokenfarm/kv"
	"github.com/vechain/tokenfarm/stackedmap"
	"github.com/vechain/tokenfarm/thor"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// State manages contract storage on top of a kv source.
type State struct {
	src kv.Getter
	sm  *stackedmap.StackedMap[any, any]
}

type (
	storageKey struct {
		addr thor.Address
		key  thor.Bytes32
	}
	eventKey      int
	eventCountKey struct{}
)

func (k storageKey) encode() []byte {
	return append(k.addr.Bytes(), k.key[:]...)
}

// New create state object reading committed storage from src.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.cacheGetter)
	return s
}

// cacheGetter implements stackedmap.MapGetter.
func (s *State) cacheGetter(key any) (any, bool, error) {
	switch k := key.(type) {
	case storageKey:
		metricStorageAccess().AddWithLabel(1, map[string]string{"op": "load"})
		raw, err := s.src.Get(k.encode())
		if err != nil {
			if s.src.IsNotFound(err) {
				return rlp.RawValue(nil), true, nil
			}
			return nil, false, err
		}
		return rlp.RawValue(raw), true, nil
	case eventCountKey:
		return 0, true, nil
	case eventKey:
		return (*Event)(nil), false, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr thor.Address, key thor.Bytes32) (thor.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if len(raw) == 0 {
		return thor.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, return hash of raw data
		return thor.Blake2b(raw), nil
	}
	return thor.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr thor.Address, key, value thor.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr thor.Address, key thor.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr thor.Address, key thor.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr thor.Address, key thor.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr thor.Address, key thor.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// AddEvent journals a contract event.
func (s *State) AddEvent(ev *Event) {
	v, _, _ := s.sm.Get(eventCountKey{})
	n := v.(int)
	s.sm.Put(eventKey(n), ev)
	s.sm.Put(eventCountKey{}, n+1)
}

// Events returns events journaled since the state was created, in emission order.
func (s *State) Events() (events []*Event) {
	s.sm.Journal(func(k, v any) bool {
		if _, ok := k.(eventKey); ok {
			events = append(events, v.(*Event))
		}
		return true
	})
	return
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects all changes since the state was created.
func (s *State) Stage() *Stage {
	var (
		storage = make(map[storageKey]rlp.RawValue)
		order   []storageKey
		events  []*Event
	)
	s.sm.Journal(func(k, v any) bool {
		switch key := k.(type) {
		case storageKey:
			if _, ok := storage[key]; !ok {
				order = append(order, key)
			}
			storage[key] = v.(rlp.RawValue)
		case eventKey:
			events = append(events, v.(*Event))
		}
		return true
	})
	return &Stage{storage: storage, order: order, events: events}
}
