// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth_NewCommit(t *testing.T) {
	h := &Health{}
	assert.Nil(t, h.Status().LastCommit)

	h.NewCommit(7)
	status := h.Status()
	require.NotNil(t, status.LastCommit)
	assert.Equal(t, uint64(7), status.LastCommit.Revision)
	assert.WithinDuration(t, time.Now(), *status.LastCommit.Timestamp, time.Second)
}

func TestHealth_Status(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(h *Health)
		healthy bool
	}{
		{"never checked", func(h *Health) { h.NewCommit(1) }, false},
		{"feeds answer", func(h *Health) { h.FeedsChecked(nil) }, true},
		{"feed unreachable", func(h *Health) { h.FeedsChecked(errors.New("timeout")) }, false},
		{"recovered", func(h *Health) {
			h.FeedsChecked(errors.New("timeout"))
			h.FeedsChecked(nil)
		}, true},
		{"check too old", func(h *Health) {
			h.MaxCheckAge = time.Nanosecond
			h.FeedsChecked(nil)
			time.Sleep(time.Millisecond)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Health{}
			tt.setup(h)
			assert.Equal(t, tt.healthy, h.Status().Healthy)
		})
	}
}

func TestHealth_FeedsError(t *testing.T) {
	h := &Health{}
	h.FeedsChecked(errors.New("no aggregator"))

	status := h.Status()
	require.NotNil(t, status.Feeds)
	assert.Equal(t, "no aggregator", status.Feeds.Error)
}
