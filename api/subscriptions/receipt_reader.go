// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/ledger"
)

// receiptReader delivers receipts of commits made after it's created.
type receiptReader struct {
	ch  chan *ledger.Receipt
	sub event.Subscription
}

func newReceiptReader(l *ledger.Ledger, size int) *receiptReader {
	ch := make(chan *ledger.Receipt, size)
	return &receiptReader{
		ch:  ch,
		sub: l.SubscribeReceipts(ch),
	}
}

func (r *receiptReader) Read(ctx context.Context) ([]any, error) {
	var msgs []any
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-r.sub.Err():
		return nil, err
	case receipt := <-r.ch:
		msgs = append(msgs, types.ConvertReceipt(receipt))
	}
	// drain what's buffered
	for {
		select {
		case receipt := <-r.ch:
			msgs = append(msgs, types.ConvertReceipt(receipt))
		default:
			return msgs, nil
		}
	}
}

func (r *receiptReader) Close() {
	r.sub.Unsubscribe()
}
