// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"
)

type Commit struct {
	Revision  uint64     `json:"revision"`
	Timestamp *time.Time `json:"timestamp"`
}

type FeedsCheck struct {
	CheckedAt *time.Time `json:"checkedAt"`
	Error     string     `json:"error,omitempty"`
}

type Status struct {
	Healthy    bool        `json:"healthy"`
	LastCommit *Commit     `json:"lastCommit"`
	Feeds      *FeedsCheck `json:"feeds"`
}

// Health tracks the commits of the ledger and the reachability of its price feeds.
// The node is healthy once the feeds answered at the last check, and that check isn't older than MaxCheckAge.
type Health struct {
	lock        sync.RWMutex
	revision    uint64
	commitAt    time.Time
	checkedAt   time.Time
	feedsErr    error
	MaxCheckAge time.Duration
}

func (h *Health) NewCommit(revision uint64) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.revision = revision
	h.commitAt = time.Now()
}

// FeedsChecked records the result of a feed check.
func (h *Health) FeedsChecked(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.checkedAt = time.Now()
	h.feedsErr = err
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{}
	if !h.commitAt.IsZero() {
		at := h.commitAt
		status.LastCommit = &Commit{Revision: h.revision, Timestamp: &at}
	}
	if !h.checkedAt.IsZero() {
		at := h.checkedAt
		status.Feeds = &FeedsCheck{CheckedAt: &at}
		if h.feedsErr != nil {
			status.Feeds.Error = h.feedsErr.Error()
		}
	}

	status.Healthy = status.Feeds != nil && h.feedsErr == nil &&
		(h.MaxCheckAge == 0 || time.Since(h.checkedAt) <= h.MaxCheckAge)
	return status
}
