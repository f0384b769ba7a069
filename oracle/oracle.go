// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle defines the price feed capability the farm values stakes with.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/vechain/tokenfarm/thor"
)

// ErrUnavailable is the kind of every oracle failure: timeouts, transport errors
// and malformed or stale answers. Match it with errors.Is.
var ErrUnavailable = errors.New("oracle unavailable")

// Price is the latest answer of a feed.
type Price struct {
	Answer    *big.Int
	Decimals  uint8
	RoundID   *big.Int
	UpdatedAt time.Time
}

// Oracle reads price feeds.
type Oracle interface {
	LatestPrice(ctx context.Context, feed thor.Address) (*Price, error)
}

// Func adapts a function to Oracle.
type Func func(ctx context.Context, feed thor.Address) (*Price, error)

func (f Func) LatestPrice(ctx context.Context, feed thor.Address) (*Price, error) {
	return f(ctx, feed)
}

// UnavailableError reports why a feed could not be read.
type UnavailableError struct {
	Feed  thor.Address
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("oracle unavailable: feed %v: %v", e.Feed, e.Cause)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

// Unavailable wraps cause as an ErrUnavailable for feed.
func Unavailable(feed thor.Address, cause error) error {
	var ue *UnavailableError
	if errors.As(cause, &ue) {
		return cause
	}
	return &UnavailableError{Feed: feed, Cause: cause}
}
