// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/metrics"
	"github.com/vechain/tokenfarm/thor"
)

var (
	logger = log.WithContext("pkg", "oracle")

	metricFetchDuration = metrics.LazyLoadHistogram("oracle_fetch_duration_ms", metrics.BucketOracle)
	metricFetchFailures = metrics.LazyLoadCounterVec("oracle_fetch_failures_count", []string{"reason"})
)

// Options configures Guard.
type Options struct {
	Timeout time.Duration    // per read, 0 disables
	MaxAge  time.Duration    // answers older than this are stale, 0 disables
	Now     func() time.Time // clock, time.Now if nil
}

// Guard wraps o so that every read is bounded by a timeout and every answer is
// validated. Any failure is reported as ErrUnavailable, no cached answer is served.
func Guard(o Oracle, opts Options) Oracle {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &guard{inner: o, opts: opts}
}

type guard struct {
	inner Oracle
	opts  Options
}

type result struct {
	price *Price
	err   error
}

func (g *guard) LatestPrice(ctx context.Context, feed thor.Address) (*Price, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	ch := make(chan result, 1)
	go func() {
		p, err := g.inner.LatestPrice(ctx, feed)
		ch <- result{p, err}
	}()

	var res result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.err = ctx.Err()
	}
	metricFetchDuration().Observe(time.Since(start).Milliseconds())

	if res.err != nil {
		return nil, g.fail(feed, "fetch", res.err)
	}
	if err := g.validate(res.price); err != nil {
		return nil, g.fail(feed, "invalid", err)
	}
	return res.price, nil
}

func (g *guard) validate(p *Price) error {
	switch {
	case p == nil || p.Answer == nil:
		return errors.New("empty answer")
	case p.Answer.Sign() <= 0:
		return errors.Errorf("non-positive answer %v", p.Answer)
	case p.Decimals > thor.MaxDecimals:
		return errors.Errorf("decimals %d out of range", p.Decimals)
	}
	if g.opts.MaxAge > 0 {
		if age := g.opts.Now().Sub(p.UpdatedAt); age > g.opts.MaxAge {
			return errors.Errorf("stale answer, updated %v ago", age.Truncate(time.Second))
		}
	}
	return nil
}

func (g *guard) fail(feed thor.Address, reason string, err error) error {
	metricFetchFailures().AddWithLabel(1, map[string]string{"reason": reason})
	logger.Debug("price feed read failed", "feed", feed, "reason", reason, "err", err)
	return Unavailable(feed, err)
}
