// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/tokenfarm/stackedmap"
)

func M(a ...any) []any {
	return a
}

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := map[string]string{"foo": "bar"}

	sm := stackedmap.New(func(key string) (string, bool, error) {
		v, r := src[key]
		return v, r, nil
	})

	tests := []struct {
		f         func()
		depth     int
		putKey    string
		putValue  string
		getKey    string
		getReturn []any
	}{
		{func() {}, 1, "", "", "foo", M("bar", true, nil)},
		{func() { sm.Push() }, 2, "foo", "baz", "foo", M("baz", true, nil)},
		{func() {}, 2, "foo", "baz1", "foo", M("baz1", true, nil)},
		{func() { sm.Push() }, 3, "foo", "qux", "foo", M("qux", true, nil)},
		{func() { sm.Pop() }, 2, "", "", "foo", M("baz1", true, nil)},
		{func() { sm.Pop() }, 1, "", "", "foo", M("bar", true, nil)},

		{func() { sm.Push(); sm.Push() }, 3, "", "", "", nil},
		{func() { sm.PopTo(0) }, 0, "", "", "", nil},
	}

	for _, test := range tests {
		test.f()
		assert.Equal(test.depth, sm.Depth())
		if test.putKey != "" {
			sm.Put(test.putKey, test.putValue)
		}
		if test.getKey != "" {
			assert.Equal(test.getReturn, M(sm.Get(test.getKey)))
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(string) (string, bool, error) {
		return "", false, nil
	})

	kvs := []struct {
		k, v string
	}{
		{"a", "b"},
		{"a", "b"},
		{"a1", "b1"},
		{"a2", "b2"},
		{"a3", "b3"},
		{"a4", "b4"},
	}

	for _, kv := range kvs {
		sm.Push()
		sm.Put(kv.k, kv.v)
	}
	i := 0
	sm.Journal(func(k, v string) bool {
		assert.Equal(kvs[i].k, k)
		assert.Equal(kvs[i].v, v)
		i++
		return true
	})
	assert.Equal(len(kvs), i)

	i = 0
	sm.Journal(func(string, string) bool {
		i++
		return false
	})
	assert.Equal(1, i, "Journal traverse should abort")
}

// TestStackedMapFuzz checks the stacked map against a naive model that snapshots a plain map on every push.
func TestStackedMapFuzz(t *testing.T) {
	f := fuzz.New().NilChance(0).NumElements(1, 4)

	sm := stackedmap.New(func(uint8) (uint16, bool, error) {
		return 0, false, nil
	})
	model := []map[uint8]uint16{{}}

	for range 2000 {
		var (
			op  uint8
			key uint8
			val uint16
		)
		f.Fuzz(&op)
		f.Fuzz(&key)
		f.Fuzz(&val)
		key %= 16

		switch op % 4 {
		case 0:
			sm.Push()
			next := make(map[uint8]uint16, len(model[len(model)-1]))
			for k, v := range model[len(model)-1] {
				next[k] = v
			}
			model = append(model, next)
		case 1:
			if sm.Depth() > 1 {
				sm.Pop()
				model = model[:len(model)-1]
			}
		default:
			sm.Put(key, val)
			model[len(model)-1][key] = val
		}

		assert.Equal(t, len(model), sm.Depth())
		for k := uint8(0); k < 16; k++ {
			want, wantOK := model[len(model)-1][k]
			got, ok, err := sm.Get(k)
			assert.NoError(t, err)
			assert.Equal(t, wantOK, ok)
			assert.Equal(t, want, got)
		}
	}
}
