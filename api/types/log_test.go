// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/tokenfarm/logdb"
	"github.com/vechain/tokenfarm/test/datagen"
	"github.com/vechain/tokenfarm/thor"
)

func ptr[T any](v T) *T { return &v }

func TestEventFilterValidate(t *testing.T) {
	tests := []struct {
		name    string
		filter  EventFilter
		wantErr bool
	}{
		{"empty", EventFilter{}, false},
		{"limit ok", EventFilter{Options: &Options{Limit: ptr(uint64(10))}}, false},
		{"limit too big", EventFilter{Options: &Options{Limit: ptr(uint64(11))}}, true},
		{"offset too big", EventFilter{Options: &Options{Offset: math.MaxUint64}}, true},
		{"bad unit", EventFilter{Range: &Range{Unit: "block"}}, true},
		{"reversed range", EventFilter{Range: &Range{From: ptr(uint64(5)), To: ptr(uint64(4))}}, true},
		{"bad order", EventFilter{Order: "up"}, true},
		{"null criteria", EventFilter{CriteriaSet: []*EventCriteria{nil}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate(10)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConvertEventFilter(t *testing.T) {
	addr := datagen.RandAddress()
	topic := datagen.RandomHash()

	f := ConvertEventFilter(&EventFilter{
		Range:       &Range{From: ptr(uint64(3))},
		CriteriaSet: []*EventCriteria{{Address: &addr, TopicSet: TopicSet{Topic1: &topic}}},
	}, 100)

	assert.Equal(t, &logdb.Range{Unit: logdb.Revision, From: 3, To: math.MaxUint64}, f.Range)
	assert.Equal(t, uint64(100), f.Options.Limit)
	assert.Equal(t, &addr, f.CriteriaSet[0].Address)
	assert.Nil(t, f.CriteriaSet[0].Topics[0])
	assert.Equal(t, &topic, f.CriteriaSet[0].Topics[1])
}

func TestEventFilterMatch(t *testing.T) {
	addr := datagen.RandAddress()
	topic := datagen.RandomHash()
	ev := &logdb.Event{Address: addr, Topics: [4]*thor.Bytes32{&topic}}

	assert.True(t, (&EventFilter{}).Match(ev))
	assert.True(t, (&EventFilter{CriteriaSet: []*EventCriteria{{Address: &addr}}}).Match(ev))
	assert.True(t, (&EventFilter{CriteriaSet: []*EventCriteria{{TopicSet: TopicSet{Topic0: &topic}}}}).Match(ev))
	assert.False(t, (&EventFilter{CriteriaSet: []*EventCriteria{{TopicSet: TopicSet{Topic1: &topic}}}}).Match(ev))

	other := datagen.RandAddress()
	assert.False(t, (&EventFilter{CriteriaSet: []*EventCriteria{{Address: &other}}}).Match(ev))
	assert.True(t, (&EventFilter{CriteriaSet: []*EventCriteria{{Address: &other}, {Address: &addr}}}).Match(ev))

	ev.Caller = addr
	assert.False(t, (&EventFilter{CriteriaSet: []*EventCriteria{{Caller: &other}}}).Match(ev))
}
