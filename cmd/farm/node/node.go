// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package node keeps a running ledger under watch: it follows its commits and
// periodically checks that every bound price feed answers.
package node

import (
	"context"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/tokenfarm/co"
	"github.com/vechain/tokenfarm/health"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/metrics"
)

var (
	logger = log.WithContext("pkg", "node")

	metricFeedsHealthy = metrics.LazyLoadGauge("node_feeds_healthy")
)

const (
	ntpServer      = "pool.ntp.org"
	maxClockOffset = 5 * time.Second
)

type Options struct {
	FeedsCheckInterval time.Duration // 0 checks once at start
	FeedsCheckTimeout  time.Duration
	ClockCheckInterval time.Duration // 0 disables
}

type Node struct {
	ledger *ledger.Ledger
	health *health.Health
	opts   Options
	goes   co.Goes
}

func New(l *ledger.Ledger, h *health.Health, opts Options) *Node {
	if opts.FeedsCheckTimeout == 0 {
		opts.FeedsCheckTimeout = 10 * time.Second
	}
	return &Node{ledger: l, health: h, opts: opts}
}

// Run blocks until ctx is done or the ledger stops delivering receipts.
func (n *Node) Run(ctx context.Context) error {
	defer n.goes.Wait()

	receipts := make(chan *ledger.Receipt, 64)
	sub := n.ledger.SubscribeReceipts(receipts)
	defer sub.Unsubscribe()

	rev, err := n.ledger.Revision()
	if err != nil {
		return err
	}
	n.health.NewCommit(rev)
	n.checkFeeds(ctx)

	var feedsC, clockC <-chan time.Time
	if n.opts.FeedsCheckInterval > 0 {
		ticker := time.NewTicker(n.opts.FeedsCheckInterval)
		defer ticker.Stop()
		feedsC = ticker.C
	}
	if n.opts.ClockCheckInterval > 0 {
		ticker := time.NewTicker(n.opts.ClockCheckInterval)
		defer ticker.Stop()
		clockC = ticker.C
		n.goes.Go(checkClockOffset)
	}

	logger.Debug("enter node loop")
	defer logger.Debug("leave node loop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-receipts:
			n.health.NewCommit(r.Revision)
		case err := <-sub.Err():
			// nil once the ledger is closed
			return err
		case <-feedsC:
			n.checkFeeds(ctx)
		case <-clockC:
			n.goes.Go(checkClockOffset)
		}
	}
}

func (n *Node) checkFeeds(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, n.opts.FeedsCheckTimeout)
	defer cancel()

	err := n.ledger.CheckFeeds(ctx)
	n.health.FeedsChecked(err)
	if err != nil {
		metricFeedsHealthy().Set(0)
		logger.Warn("price feeds unavailable", "err", err)
		return
	}
	metricFeedsHealthy().Set(1)
}

func checkClockOffset() {
	resp, err := ntp.Query(ntpServer)
	if err != nil {
		logger.Debug("failed to access NTP", "err", err)
		return
	}
	if resp.ClockOffset > maxClockOffset || resp.ClockOffset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset))
	}
}
