// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger serves the farm deployment as a single-writer service.
// Mutations are serialized and committed atomically; views read a pinned snapshot.
package ledger

import (
	"context"
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/builtin/aggregator"
	"github.com/vechain/tokenfarm/builtin/farm"
	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/token"
	"github.com/vechain/tokenfarm/co"
	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/kv"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/logdb"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "ledger")

// ErrNotSolo is returned by operations only available on solo networks.
var ErrNotSolo = errors.New("only available on solo network")

// Operation names, recorded with the events of each commit.
const (
	OpDeploy       = "deploy"
	OpApprove      = "approve"
	OpTransfer     = "transfer"
	OpAddAllowed   = "addAllowedToken"
	OpSetPriceFeed = "setPriceFeed"
	OpStake        = "stake"
	OpUnstake      = "unstake"
	OpIssueRewards = "issueRewardTokens"
	OpUpdateAnswer = "updateAnswer"
)

// Feeds creates the oracle used to value stakes while st is being read or modified.
type Feeds func(st *state.State) oracle.Oracle

// SoloFeeds reads the mock aggregators deployed in the state itself.
func SoloFeeds(opts oracle.Options) Feeds {
	return func(st *state.State) oracle.Oracle {
		return oracle.Guard(aggregator.NewOracle(st), opts)
	}
}

// StaticFeeds always uses o, e.g. a chainlink client of a live network.
func StaticFeeds(o oracle.Oracle) Feeds {
	return func(*state.State) oracle.Oracle {
		return o
	}
}

// Options of a ledger.
type Options struct {
	Feeds    Feeds
	Deployer thor.Address     // owner of a new deployment, deploy.Deployer() if zero
	Now      func() time.Time // time.Now if nil
}

// Receipt describes a committed operation.
type Receipt struct {
	ID       thor.Bytes32
	Op       string
	Caller   thor.Address
	Revision uint64
	Time     uint64
	Events   []*state.Event
}

// Ledger owns the store of a deployment.
type Ledger struct {
	mu         sync.RWMutex
	stater     *state.Stater
	logDB      *logdb.LogDB
	feeds      Feeds
	now        func() time.Time
	deployment *deploy.Deployment

	tick        co.Signal
	receiptFeed event.Feed
	scope       event.SubscriptionScope
	goes        co.Goes
	closeOnce   sync.Once

	// receipts wait here in commit order until the dispatcher sends them
	queueMu sync.Mutex
	queue   []*Receipt
	queued  chan struct{}
	quit    chan struct{}
}

// Open opens the ledger stored in db. When db holds no deployment, cfg is deployed first.
func Open(db kv.Store, logDB *logdb.LogDB, cfg *deploy.Config, opts Options) (*Ledger, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Deployer.IsZero() {
		opts.Deployer = deploy.Deployer()
	}
	if opts.Feeds == nil {
		return nil, errors.New("feeds required")
	}

	l := &Ledger{
		stater: state.NewStater(db),
		logDB:  logDB,
		feeds:  opts.Feeds,
		now:    opts.Now,
		queued: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	l.goes.Go(l.dispatchReceipts)

	if err := l.load(cfg, opts.Deployer); err != nil {
		l.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) load(cfg *deploy.Config, deployer thor.Address) error {
	d, err := deploy.Load(l.stater.NewState())
	if err != nil {
		return err
	}
	if d != nil {
		if cfg != nil && cfg.Network != d.Network {
			return errors.Errorf("store holds a %q deployment, configured %q", d.Network, cfg.Network)
		}
		l.deployment = d
		rev, err := l.stater.Revision()
		if err != nil {
			return err
		}
		logger.Info("ledger opened", "network", d.Network, "farm", d.Farm, "revision", rev)
		return nil
	}

	if cfg == nil {
		return errors.New("no deployment found and no config given")
	}
	receipt, err := l.execute(OpDeploy, deployer, func(st *state.State) error {
		deployed, err := deploy.Deploy(st, cfg, deployer, l.now())
		if err != nil {
			return err
		}
		d = deployed
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "deploy")
	}
	l.deployment = d
	logger.Info("ledger created", "network", d.Network, "farm", d.Farm, "revision", receipt.Revision)
	return nil
}

// Close stops delivering receipts.
func (l *Ledger) Close() {
	l.closeOnce.Do(func() {
		l.scope.Close()
		close(l.quit)
		l.goes.Wait()
		logger.Debug("closed")
	})
}

// Deployment returns the addresses of the deployment.
func (l *Ledger) Deployment() *deploy.Deployment {
	return l.deployment
}

// LogDB returns the event history.
func (l *Ledger) LogDB() *logdb.LogDB {
	return l.logDB
}

// Revision returns the latest committed revision.
func (l *Ledger) Revision() (uint64, error) {
	return l.stater.Revision()
}

// NewTicker creates a waiter fired on every commit.
func (l *Ledger) NewTicker() co.Waiter {
	return l.tick.NewWaiter()
}

// SubscribeReceipts delivers the receipt of every commit to ch.
func (l *Ledger) SubscribeReceipts(ch chan *Receipt) event.Subscription {
	return l.scope.Track(l.receiptFeed.Subscribe(ch))
}

func operationID(op string, caller thor.Address, revision uint64, now time.Time) thor.Bytes32 {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], revision)
	binary.BigEndian.PutUint64(b[8:], uint64(now.UnixNano()))
	return thor.Blake2b([]byte(op), caller.Bytes(), b[:])
}

// execute runs fn on a fresh state. An error discards every change fn made, otherwise
// the changes are committed as a new revision and the emitted events are recorded.
func (l *Ledger) execute(op string, caller thor.Address, fn func(st *state.State) error) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	start := time.Now()
	st := l.stater.NewState()
	if err := fn(st); err != nil {
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": statusOf(err)})
		logger.Debug("operation rejected", "op", op, "caller", caller, "err", err)
		return nil, err
	}

	stage := st.Stage()
	rev, err := l.stater.Commit(stage)
	if err != nil {
		metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": "error"})
		return nil, errors.Wrap(err, "commit")
	}

	now := l.now()
	receipt := &Receipt{
		ID:       operationID(op, caller, rev, now),
		Op:       op,
		Caller:   caller,
		Revision: rev,
		Time:     uint64(now.Unix()),
		Events:   stage.Events(),
	}
	if err := l.logDB.Prepare(rev, receipt.Time, receipt.ID, op, caller).Insert(receipt.Events).Commit(); err != nil {
		// the state is committed already, the history misses this revision
		logger.Error("failed to write events", "op", op, "revision", rev, "err", err)
	}

	metricOperations().AddWithLabel(1, map[string]string{"op": op, "status": "ok"})
	metricOperationDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	metricRevision().Set(int64(rev))

	l.tick.Broadcast()
	l.queueMu.Lock()
	l.queue = append(l.queue, receipt)
	l.queueMu.Unlock()
	select {
	case l.queued <- struct{}{}:
	default:
	}
	logger.Debug("operation committed", "op", op, "caller", caller, "revision", rev, "events", len(receipt.Events), "slots", stage.Len())
	return receipt, nil
}

// dispatchReceipts sends queued receipts to subscribers one by one, so they
// are observed in commit order.
func (l *Ledger) dispatchReceipts() {
	for {
		select {
		case <-l.quit:
			return
		case <-l.queued:
		}
		l.queueMu.Lock()
		receipts := l.queue
		l.queue = nil
		l.queueMu.Unlock()

		for _, r := range receipts {
			l.receiptFeed.Send(r)
		}
	}
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, reverts.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, reverts.ErrInvalidOperation):
		return "invalid"
	case errors.Is(err, reverts.ErrNoPriceFeedBound):
		return "no_feed"
	case errors.Is(err, reverts.ErrInsufficientReserve):
		return "insufficient_reserve"
	case errors.Is(err, oracle.ErrUnavailable):
		return "oracle_unavailable"
	default:
		return "error"
	}
}

func (l *Ledger) farm(st *state.State) *farm.Farm {
	return farm.New(l.deployment.Farm, st, l.feeds(st))
}

// Approve lets spender transfer up to amount of token on behalf of owner.
func (l *Ledger) Approve(tokenAddr, owner, spender thor.Address, amount *big.Int) (*Receipt, error) {
	return l.execute(OpApprove, owner, func(st *state.State) error {
		return token.New(tokenAddr, st).Approve(owner, spender, amount)
	})
}

// Transfer moves amount of token from one account to another.
func (l *Ledger) Transfer(tokenAddr, from, to thor.Address, amount *big.Int) (*Receipt, error) {
	return l.execute(OpTransfer, from, func(st *state.State) error {
		return token.New(tokenAddr, st).Transfer(from, to, amount)
	})
}

// AddAllowedToken registers token as stakable. Owner only.
func (l *Ledger) AddAllowedToken(caller, tokenAddr thor.Address) (*Receipt, error) {
	return l.execute(OpAddAllowed, caller, func(st *state.State) error {
		return l.farm(st).AddAllowedToken(caller, tokenAddr)
	})
}

// SetPriceFeed binds token to feed. Owner only.
func (l *Ledger) SetPriceFeed(caller, tokenAddr, feed thor.Address) (*Receipt, error) {
	return l.execute(OpSetPriceFeed, caller, func(st *state.State) error {
		return l.farm(st).SetPriceFeed(caller, tokenAddr, feed)
	})
}

// Stake moves amount of token from caller into the farm. The farm must be approved to spend it.
func (l *Ledger) Stake(ctx context.Context, caller, tokenAddr thor.Address, amount *big.Int) (*Receipt, error) {
	return l.execute(OpStake, caller, func(st *state.State) error {
		return l.farm(st).Stake(ctx, caller, tokenAddr, amount)
	})
}

// Unstake returns the whole staked balance of token to caller.
func (l *Ledger) Unstake(caller, tokenAddr thor.Address) (*Receipt, error) {
	return l.execute(OpUnstake, caller, func(st *state.State) error {
		return l.farm(st).Unstake(caller, tokenAddr)
	})
}

// IssueRewardTokens pays every staker the value of its stake in reward tokens. Owner only.
func (l *Ledger) IssueRewardTokens(ctx context.Context, caller thor.Address) (*Receipt, farm.Payouts, error) {
	var payouts farm.Payouts
	receipt, err := l.execute(OpIssueRewards, caller, func(st *state.State) (err error) {
		payouts, err = l.farm(st).IssueRewardTokens(ctx, caller)
		return
	})
	if err != nil {
		return nil, nil, err
	}
	metricRewardsIssued().Add(int64(len(payouts)))
	return receipt, payouts, nil
}

// UpdateFeedAnswer starts a new round of a mock price feed. Solo only.
func (l *Ledger) UpdateFeedAnswer(feed thor.Address, answer *big.Int) (*Receipt, error) {
	if !l.IsSolo() {
		return nil, ErrNotSolo
	}
	if !l.isMockFeed(feed) {
		return nil, reverts.Newf(reverts.ErrInvalidOperation, "%v is not a mock price feed", feed)
	}
	return l.execute(OpUpdateAnswer, l.deployment.Deployer, func(st *state.State) error {
		return aggregator.New(feed, st).UpdateAnswer(answer, l.now())
	})
}

// IsSolo reports whether the deployment runs mocks.
func (l *Ledger) IsSolo() bool {
	return l.deployment.Network == deploy.SoloNetwork
}

func (l *Ledger) isMockFeed(feed thor.Address) bool {
	for _, f := range l.deployment.Feeds {
		if f.Address == feed {
			return true
		}
	}
	return false
}
