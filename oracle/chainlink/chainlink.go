// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package chainlink reads Chainlink AggregatorV3Interface price feeds over JSON-RPC.
package chainlink

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/cache"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "chainlink")

const aggregatorV3ABI = `[
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"description","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"version","stateMutability":"view","inputs":[],
		"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"latestRoundData","stateMutability":"view","inputs":[],
		"outputs":[
			{"name":"roundId","type":"uint80"},
			{"name":"answer","type":"int256"},
			{"name":"startedAt","type":"uint256"},
			{"name":"updatedAt","type":"uint256"},
			{"name":"answeredInRound","type":"uint80"}]}
]`

var aggregatorABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(aggregatorV3ABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

const metadataCacheSize = 256

// Caller executes read-only contract calls. *ethclient.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Metadata is the immutable part of a feed.
type Metadata struct {
	Decimals    uint8
	Description string
}

// Client implements oracle.Oracle for on-chain aggregators.
// Only feed metadata is cached, answers are always read from the chain.
type Client struct {
	caller Caller
	meta   *cache.LRU[thor.Address, *Metadata]
	close  func()
}

var _ oracle.Oracle = (*Client)(nil)

// New creates a client calling through caller.
func New(caller Caller) *Client {
	meta, _ := cache.NewLRU[thor.Address, *Metadata](metadataCacheSize)
	return &Client{caller: caller, meta: meta, close: func() {}}
}

// Dial connects to an Ethereum JSON-RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	ec, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrap(err, "dial eth rpc")
	}
	c := New(ec)
	c.close = ec.Close
	logger.Info("connected to price feed network", "url", url)
	return c, nil
}

// Close releases the connection.
func (c *Client) Close() {
	c.close()
}

func (c *Client) call(ctx context.Context, feed thor.Address, method string) ([]any, error) {
	input, err := aggregatorABI.Pack(method)
	if err != nil {
		return nil, err
	}
	to := common.Address(feed)
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: input}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "call %s", method)
	}
	values, err := aggregatorABI.Unpack(method, output)
	if err != nil {
		return nil, errors.Wrapf(err, "unpack %s", method)
	}
	return values, nil
}

// Metadata returns decimals and description of feed.
func (c *Client) Metadata(ctx context.Context, feed thor.Address) (*Metadata, error) {
	return c.meta.GetOrLoad(feed, func(feed thor.Address) (*Metadata, error) {
		out, err := c.call(ctx, feed, "decimals")
		if err != nil {
			return nil, err
		}
		decimals, ok := out[0].(uint8)
		if !ok {
			return nil, errors.Errorf("malformed decimals %T", out[0])
		}
		out, err = c.call(ctx, feed, "description")
		if err != nil {
			return nil, err
		}
		description, _ := out[0].(string)
		return &Metadata{Decimals: decimals, Description: description}, nil
	})
}

// LatestPrice implements oracle.Oracle.
func (c *Client) LatestPrice(ctx context.Context, feed thor.Address) (*oracle.Price, error) {
	meta, err := c.Metadata(ctx, feed)
	if err != nil {
		return nil, oracle.Unavailable(feed, err)
	}
	out, err := c.call(ctx, feed, "latestRoundData")
	if err != nil {
		return nil, oracle.Unavailable(feed, err)
	}
	if len(out) != 5 {
		return nil, oracle.Unavailable(feed, errors.Errorf("malformed round data, %d fields", len(out)))
	}
	roundID, ok1 := out[0].(*big.Int)
	answer, ok2 := out[1].(*big.Int)
	updatedAt, ok3 := out[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return nil, oracle.Unavailable(feed, errors.New("malformed round data"))
	}
	return &oracle.Price{
		Answer:    answer,
		Decimals:  meta.Decimals,
		RoundID:   roundID,
		UpdatedAt: time.Unix(updatedAt.Int64(), 0),
	}, nil
}
