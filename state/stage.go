// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/tokenfarm/kv"
)

// Stage abstracts the changes of a state ready to be persisted.
type Stage struct {
	storage map[storageKey]rlp.RawValue
	order   []storageKey
	events  []*Event
}

// Len returns the count of changed storage slots.
func (s *Stage) Len() int {
	return len(s.order)
}

// Events returns the events emitted by the staged changes.
func (s *Stage) Events() []*Event {
	return s.events
}

// Commit writes changed slots into w. Empty values delete the slot.
// Pass a bulk to make the write atomic.
func (s *Stage) Commit(w kv.Putter) error {
	for _, key := range s.order {
		val := s.storage[key]
		var err error
		if len(val) == 0 {
			err = w.Delete(key.encode())
		} else {
			err = w.Put(key.encode(), val)
		}
		if err != nil {
			return &Error{err}
		}
	}
	metricStorageAccess().AddWithLabel(int64(len(s.order)), map[string]string{"op": "commit"})
	return nil
}
