// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

// Event represents a contract event that can be stored in db.
type Event struct {
	Revision uint64
	Index    uint32
	Time     uint64
	OpID     thor.Bytes32
	Op       string
	Caller   thor.Address // who called the operation
	Address  thor.Address // always a contract address
	Topics   [4]*thor.Bytes32
	Data     []byte
}

// newEvent converts state.Event to Event.
func newEvent(b *Batch, index uint32, ev *state.Event) *Event {
	event := &Event{
		Revision: b.revision,
		Index:    index,
		Time:     b.time,
		OpID:     b.opID,
		Op:       b.op,
		Caller:   b.caller,
		Address:  ev.Address,
		Data:     ev.Data,
	}
	for i := 0; i < len(ev.Topics) && i < len(event.Topics); i++ {
		topic := ev.Topics[i]
		event.Topics[i] = &topic
	}
	return event
}

type RangeType string

const (
	Revision RangeType = "revision"
	Time     RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a contract address
	Caller  *thor.Address
	Topics  [4]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	OpID        *thor.Bytes32
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
