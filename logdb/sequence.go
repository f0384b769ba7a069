// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import "math"

const indexBits = 24

// sequence orders events by revision then index within the revision.
type sequence int64

func newSequence(revision uint64, index uint32) sequence {
	if index >= 1<<indexBits {
		panic("index too large")
	}
	if revision > math.MaxInt64>>indexBits {
		panic("revision too large")
	}
	return sequence(revision<<indexBits) | sequence(index)
}

func (s sequence) Revision() uint64 {
	return uint64(s >> indexBits)
}

func (s sequence) Index() uint32 {
	return uint32(s & (1<<indexBits - 1))
}
