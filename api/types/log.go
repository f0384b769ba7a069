// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/tokenfarm/logdb"
	"github.com/vechain/tokenfarm/thor"
)

// LogMeta locates an event in the history.
type LogMeta struct {
	Revision uint64       `json:"revision"`
	Index    uint32       `json:"index"`
	Time     uint64       `json:"time"`
	OpID     thor.Bytes32 `json:"opID"`
	Op       string       `json:"op"`
	Caller   thor.Address `json:"caller"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

// ConvertEvent converts a logdb.Event into a json format event.
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			Revision: event.Revision,
			Index:    event.Index,
			Time:     event.Time,
			OpID:     event.OpID,
			Op:       event.Op,
			Caller:   event.Caller,
		},
	}
	fe.Topics = make([]*thor.Bytes32, 0)
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	return fe
}

type TopicSet struct {
	Topic0 *thor.Bytes32 `json:"topic0"`
	Topic1 *thor.Bytes32 `json:"topic1"`
	Topic2 *thor.Bytes32 `json:"topic2"`
	Topic3 *thor.Bytes32 `json:"topic3"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	Caller  *thor.Address `json:"caller"`
	TopicSet
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", uint64(math.MaxInt64))
	}
	return nil
}

type Range struct {
	Unit logdb.RangeType `json:"unit,omitempty"`
	From *uint64         `json:"from,omitempty"`
	To   *uint64         `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != logdb.Revision && r.Unit != logdb.Time {
		return fmt.Errorf("range.unit must be either 'revision' or 'time', got '%s'", r.Unit)
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return nil
}

type EventFilter struct {
	OpID        *thor.Bytes32    `json:"opID,omitempty"`
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

// Validate checks the filter against the limit of a query.
func (f *EventFilter) Validate(limit uint64) error {
	if err := f.Options.Validate(limit); err != nil {
		return err
	}
	if err := f.Range.Validate(); err != nil {
		return err
	}
	if f.Order != "" && f.Order != logdb.ASC && f.Order != logdb.DESC {
		return fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", f.Order)
	}
	for i, criterion := range f.CriteriaSet {
		if criterion == nil {
			return fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
	}
	return nil
}

func convertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	rng := &logdb.Range{Unit: r.Unit, To: math.MaxUint64}
	if rng.Unit == "" {
		rng.Unit = logdb.Revision
	}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To != nil {
		rng.To = *r.To
	}
	return rng
}

// ConvertEventFilter converts a validated filter, limit applies when options give none.
func ConvertEventFilter(filter *EventFilter, limit uint64) *logdb.EventFilter {
	f := &logdb.EventFilter{
		OpID:    filter.OpID,
		Range:   convertRange(filter.Range),
		Options: &logdb.Options{Limit: limit},
		Order:   filter.Order,
	}
	if filter.Options != nil {
		f.Options.Offset = filter.Options.Offset
		if filter.Options.Limit != nil {
			f.Options.Limit = *filter.Options.Limit
		}
	}
	for _, criterion := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: criterion.Address,
			Caller:  criterion.Caller,
			Topics:  [4]*thor.Bytes32{criterion.Topic0, criterion.Topic1, criterion.Topic2, criterion.Topic3},
		})
	}
	return f
}

// Match reports whether event passes the criteria set, used for live subscriptions.
func (f *EventFilter) Match(event *logdb.Event) bool {
	if f.OpID != nil && *f.OpID != event.OpID {
		return false
	}
	if len(f.CriteriaSet) == 0 {
		return true
	}
	for _, c := range f.CriteriaSet {
		if c.match(event) {
			return true
		}
	}
	return false
}

func (c *EventCriteria) match(event *logdb.Event) bool {
	if c.Address != nil && *c.Address != event.Address {
		return false
	}
	if c.Caller != nil && *c.Caller != event.Caller {
		return false
	}
	for i, topic := range []*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3} {
		if topic == nil {
			continue
		}
		if event.Topics[i] == nil || *event.Topics[i] != *topic {
			return false
		}
	}
	return true
}
