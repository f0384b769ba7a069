// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/co"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/logdb"
)

// eventReader reads the events of committed revisions in order, starting at next.
type eventReader struct {
	ledger *ledger.Ledger
	filter *types.EventFilter
	ticker co.Waiter
	next   uint64
}

func newEventReader(ledger *ledger.Ledger, next uint64, filter *types.EventFilter) *eventReader {
	return &eventReader{
		ledger: ledger,
		filter: filter,
		ticker: ledger.NewTicker(),
		next:   next,
	}
}

func (r *eventReader) Read(ctx context.Context) ([]any, error) {
	for {
		msgs, err := r.read(ctx)
		if err != nil || len(msgs) > 0 {
			return msgs, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.ticker.C():
		}
	}
}

// read returns the matching events up to the latest revision.
func (r *eventReader) read(ctx context.Context) ([]any, error) {
	current, err := r.ledger.Revision()
	if err != nil {
		return nil, err
	}
	if r.next > current {
		return nil, nil
	}

	var msgs []any
	for offset := uint64(0); ; offset += logdb.MaxLimit {
		filter := types.ConvertEventFilter(r.filter, logdb.MaxLimit)
		filter.Range = &logdb.Range{Unit: logdb.Revision, From: r.next, To: current}
		filter.Options.Offset = offset

		events, err := r.ledger.LogDB().FilterEvents(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			msgs = append(msgs, types.ConvertEvent(ev))
		}
		if len(events) < logdb.MaxLimit {
			break
		}
	}
	r.next = current + 1
	return msgs, nil
}
