// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	tests := []struct {
		revision uint64
		index    uint32
	}{
		{0, 0},
		{1, 1},
		{maxRevision, 1<<indexBits - 1},
		{123456, 789},
	}
	for _, tt := range tests {
		seq := newSequence(tt.revision, tt.index)
		assert.True(t, seq >= 0)
		assert.Equal(t, tt.revision, seq.Revision())
		assert.Equal(t, tt.index, seq.Index())
	}
	assert.True(t, newSequence(2, 0) > newSequence(1, 1<<indexBits-1))

	assert.Panics(t, func() { newSequence(1, 1<<indexBits) })
	assert.Panics(t, func() { newSequence(maxRevision+1, 0) })
}
