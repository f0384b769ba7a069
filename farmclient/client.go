// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farmclient provides an HTTP client of the farm api.
// Amounts are plain *big.Int, converted to and from the json amounts of the api.
package farmclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/thor"
)

// Client represents the HTTP client of a farm node.
type Client struct {
	url string
	c   *http.Client
}

// New creates a new Client with the provided URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// URL returns the base url of the node.
func (c *Client) URL() string {
	return c.url
}

func (c *Client) receipt(body []byte, err error, what string) (*types.Receipt, error) {
	if err != nil {
		return nil, fmt.Errorf("unable to %s - %w", what, err)
	}
	return decode[types.Receipt](body, "receipt")
}

// Token retrieves the metadata of a token.
func (c *Client) Token(addr thor.Address) (*types.Token, error) {
	body, err := c.httpGET(c.url + "/tokens/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token - %w", err)
	}
	return decode[types.Token](body, "token")
}

// Balance retrieves the balance of account.
func (c *Client) Balance(token, account thor.Address) (*big.Int, error) {
	body, err := c.httpGET(c.url + "/tokens/" + token.String() + "/balances/" + account.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve balance - %w", err)
	}
	res, err := decode[types.Balance](body, "balance")
	if err != nil {
		return nil, err
	}
	return types.Int(res.Balance), nil
}

// Allowance retrieves the amount spender may transfer on behalf of owner.
func (c *Client) Allowance(token, owner, spender thor.Address) (*big.Int, error) {
	body, err := c.httpGET(c.url + "/tokens/" + token.String() + "/allowances/" + owner.String() + "/" + spender.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve allowance - %w", err)
	}
	res, err := decode[types.Allowance](body, "allowance")
	if err != nil {
		return nil, err
	}
	return types.Int(res.Allowance), nil
}

func (c *Client) Transfer(token, caller, to thor.Address, amount *big.Int) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/tokens/"+token.String()+"/transfer", &types.TransferRequest{
		Caller: caller,
		To:     to,
		Amount: types.NewAmount(amount),
	})
	return c.receipt(body, err, "transfer")
}

func (c *Client) Approve(token, caller, spender thor.Address, amount *big.Int) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/tokens/"+token.String()+"/approve", &types.ApproveRequest{
		Caller:  caller,
		Spender: spender,
		Amount:  types.NewAmount(amount),
	})
	return c.receipt(body, err, "approve")
}

// Farm retrieves the farm summary.
func (c *Client) Farm() (*types.Farm, error) {
	body, err := c.httpGET(c.url + "/farm")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve farm - %w", err)
	}
	return decode[types.Farm](body, "farm")
}

func (c *Client) AllowedTokens() ([]*types.AllowedToken, error) {
	body, err := c.httpGET(c.url + "/farm/allowed-tokens")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve allowed tokens - %w", err)
	}
	res, err := decode[[]*types.AllowedToken](body, "allowed tokens")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

func (c *Client) AddAllowedToken(caller, token thor.Address) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/farm/allowed-tokens", &types.AddAllowedTokenRequest{Caller: caller, Token: token})
	return c.receipt(body, err, "add allowed token")
}

// PriceFeed retrieves the feed bound to token, zero if none.
func (c *Client) PriceFeed(token thor.Address) (thor.Address, error) {
	body, err := c.httpGET(c.url + "/farm/price-feeds/" + token.String())
	if err != nil {
		return thor.Address{}, fmt.Errorf("unable to retrieve price feed - %w", err)
	}
	res, err := decode[types.AllowedToken](body, "price feed")
	if err != nil {
		return thor.Address{}, err
	}
	return res.Feed, nil
}

func (c *Client) SetPriceFeed(caller, token, feed thor.Address) (*types.Receipt, error) {
	body, err := c.httpPUT(c.url+"/farm/price-feeds/"+token.String(), &types.SetPriceFeedRequest{Caller: caller, Feed: feed})
	return c.receipt(body, err, "set price feed")
}

// TokenValue retrieves the latest price of token.
func (c *Client) TokenValue(token thor.Address) (*types.TokenValue, error) {
	body, err := c.httpGET(c.url + "/farm/tokens/" + token.String() + "/value")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token value - %w", err)
	}
	return decode[types.TokenValue](body, "token value")
}

func (c *Client) Stake(caller, token thor.Address, amount *big.Int) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/farm/stake", &types.StakeRequest{
		Caller: caller,
		Token:  token,
		Amount: types.NewAmount(amount),
	})
	return c.receipt(body, err, "stake")
}

func (c *Client) Unstake(caller, token thor.Address) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/farm/unstake", &types.UnstakeRequest{Caller: caller, Token: token})
	return c.receipt(body, err, "unstake")
}

func (c *Client) Stakers() ([]thor.Address, error) {
	body, err := c.httpGET(c.url + "/farm/stakers")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve stakers - %w", err)
	}
	res, err := decode[[]thor.Address](body, "stakers")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// Staker retrieves the stake of account, valued computes its total value too.
func (c *Client) Staker(account thor.Address, valued bool) (*types.Staker, error) {
	url := c.url + "/farm/stakers/" + account.String()
	if valued {
		url += "?valued=true"
	}
	body, err := c.httpGET(url)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve staker - %w", err)
	}
	return decode[types.Staker](body, "staker")
}

func (c *Client) PreviewRewards() (*types.Rewards, error) {
	body, err := c.httpGET(c.url + "/farm/rewards")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve rewards - %w", err)
	}
	return decode[types.Rewards](body, "rewards")
}

func (c *Client) IssueRewards(caller thor.Address) (*types.Rewards, error) {
	body, err := c.httpPOST(c.url+"/farm/rewards", &types.IssueRewardsRequest{Caller: caller})
	if err != nil {
		return nil, fmt.Errorf("unable to issue rewards - %w", err)
	}
	return decode[types.Rewards](body, "rewards")
}

// Feed retrieves the latest round of a price feed.
func (c *Client) Feed(addr thor.Address) (*types.Feed, error) {
	body, err := c.httpGET(c.url + "/feeds/" + addr.String())
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve feed - %w", err)
	}
	return decode[types.Feed](body, "feed")
}

// UpdateAnswer starts a new round of a mock feed.
func (c *Client) UpdateAnswer(addr thor.Address, answer *big.Int) (*types.Receipt, error) {
	body, err := c.httpPOST(c.url+"/feeds/"+addr.String(), &types.UpdateAnswerRequest{Answer: types.NewAmount(answer)})
	return c.receipt(body, err, "update answer")
}

func (c *Client) FilterEvents(req *types.EventFilter) ([]*types.FilteredEvent, error) {
	body, err := c.httpPOST(c.url+"/logs/event", req)
	if err != nil {
		return nil, fmt.Errorf("unable to filter events - %w", err)
	}
	res, err := decode[[]*types.FilteredEvent](body, "events")
	if err != nil {
		return nil, err
	}
	return *res, nil
}

// Node retrieves the network and deployment served.
func (c *Client) Node() (*types.Node, error) {
	body, err := c.httpGET(c.url + "/node")
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve node - %w", err)
	}
	return decode[types.Node](body, "node")
}

// RawHTTPPost sends a raw HTTP POST request to the specified path with the provided data.
func (c *Client) RawHTTPPost(path string, calldata any) ([]byte, int, error) {
	data, ok := calldata.([]byte)
	if !ok {
		var err error
		if data, err = json.Marshal(calldata); err != nil {
			return nil, 0, fmt.Errorf("unable to marshal payload - %w", err)
		}
	}
	return c.rawHTTPRequest(http.MethodPost, c.url+path, bytes.NewReader(data))
}

// RawHTTPGet sends a raw HTTP GET request to the specified path.
func (c *Client) RawHTTPGet(path string) ([]byte, int, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}
