// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.Error(t, err)

	c, err := NewLRU[string, int](2)
	require.NoError(t, err)

	loads := 0
	loader := func(k string) (int, error) {
		loads++
		if k == "bad" {
			return 0, errors.New("boom")
		}
		return len(k), nil
	}

	v, err := c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	v, err = c.GetOrLoad("abc", loader)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("bad", loader)
	assert.Error(t, err)
	_, ok := c.Get("bad")
	assert.False(t, ok, "errors are not cached")

	c.Add("a", 1)
	c.Add("b", 2)
	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("abc")
	assert.False(t, ok, "evicted")
}

func TestStats(t *testing.T) {
	var cs Stats
	cs.Hit()
	cs.Hit()
	assert.Equal(t, int64(1), cs.Miss())

	changed, hit, miss := cs.Stats()
	assert.True(t, changed)
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	changed, _, _ = cs.Stats()
	assert.False(t, changed)
}
