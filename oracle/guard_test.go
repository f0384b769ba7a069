// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/thor"
)

func fixed(p *Price, err error) Oracle {
	return Func(func(context.Context, thor.Address) (*Price, error) {
		return p, err
	})
}

func TestGuard(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	feed := thor.BytesToAddress([]byte("feed"))
	good := &Price{Answer: thor.InitialPriceFeedValue, Decimals: 18, RoundID: big.NewInt(1), UpdatedAt: now.Add(-time.Minute)}

	tests := []struct {
		name    string
		inner   Oracle
		wantErr bool
	}{
		{"ok", fixed(good, nil), false},
		{"transport error", fixed(nil, errors.New("connection refused")), true},
		{"nil price", fixed(nil, nil), true},
		{"zero answer", fixed(&Price{Answer: big.NewInt(0), Decimals: 18, UpdatedAt: now}, nil), true},
		{"negative answer", fixed(&Price{Answer: big.NewInt(-5), Decimals: 18, UpdatedAt: now}, nil), true},
		{"decimals too large", fixed(&Price{Answer: big.NewInt(5), Decimals: 78, UpdatedAt: now}, nil), true},
		{"stale", fixed(&Price{Answer: big.NewInt(5), Decimals: 8, UpdatedAt: now.Add(-2 * time.Hour)}, nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Guard(tt.inner, Options{MaxAge: time.Hour, Now: func() time.Time { return now }})
			p, err := g.LatestPrice(context.Background(), feed)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
				assert.Nil(t, p)

				var ue *UnavailableError
				require.True(t, errors.As(err, &ue))
				assert.Equal(t, feed, ue.Feed)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, good, p)
			}
		})
	}
}

func TestGuardTimeout(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	slow := Func(func(context.Context, thor.Address) (*Price, error) {
		<-block
		return nil, nil
	})

	start := time.Now()
	_, err := Guard(slow, Options{Timeout: 20 * time.Millisecond}).LatestPrice(context.Background(), thor.Address{})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}

func TestUnavailableNotDoubleWrapped(t *testing.T) {
	feed := thor.Address{1}
	err := Unavailable(feed, errors.New("boom"))
	assert.Same(t, err, Unavailable(thor.Address{2}, err))
	assert.Contains(t, err.Error(), feed.String())
}
