// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package chainlink

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

type fakeFeed struct {
	address   common.Address
	decimals  uint8
	answer    *big.Int
	updatedAt int64
	calls     map[string]int
	err       error
}

func (f *fakeFeed) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if call.To == nil || *call.To != f.address {
		return nil, nil
	}
	for name, method := range aggregatorABI.Methods {
		if !bytes.Equal(call.Data[:4], method.ID) {
			continue
		}
		f.calls[name]++
		switch name {
		case "decimals":
			return method.Outputs.Pack(f.decimals)
		case "description":
			return method.Outputs.Pack("ETH / USD")
		case "latestRoundData":
			ts := big.NewInt(f.updatedAt)
			return method.Outputs.Pack(big.NewInt(7), f.answer, ts, ts, big.NewInt(7))
		}
	}
	return nil, errors.New("unknown method")
}

func TestLatestPrice(t *testing.T) {
	feed := thor.BytesToAddress([]byte("eth-usd"))
	fake := &fakeFeed{
		address:   common.Address(feed),
		decimals:  8,
		answer:    big.NewInt(2000_00000000),
		updatedAt: 1_700_000_000,
		calls:     map[string]int{},
	}
	c := New(fake)
	defer c.Close()

	p, err := c.LatestPrice(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Answer.Cmp(big.NewInt(2000_00000000)))
	assert.Equal(t, uint8(8), p.Decimals)
	assert.Equal(t, int64(7), p.RoundID.Int64())
	assert.Equal(t, time.Unix(1_700_000_000, 0), p.UpdatedAt)

	fake.answer = big.NewInt(2100_00000000)
	p, err = c.LatestPrice(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Answer.Cmp(big.NewInt(2100_00000000)), "answers are never cached")

	assert.Equal(t, 1, fake.calls["decimals"])
	assert.Equal(t, 1, fake.calls["description"])
	assert.Equal(t, 2, fake.calls["latestRoundData"])

	meta, err := c.Metadata(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, &Metadata{Decimals: 8, Description: "ETH / USD"}, meta)
}

func TestLatestPriceUnavailable(t *testing.T) {
	feed := thor.BytesToAddress([]byte("eth-usd"))
	c := New(&fakeFeed{err: errors.New("connection refused"), calls: map[string]int{}})

	_, err := c.LatestPrice(context.Background(), feed)
	assert.True(t, errors.Is(err, oracle.ErrUnavailable))

	// empty return data, no contract at the address
	c = New(&fakeFeed{address: common.Address{1}, calls: map[string]int{}})
	_, err = c.LatestPrice(context.Background(), feed)
	assert.True(t, errors.Is(err, oracle.ErrUnavailable))
}
