// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testfarm builds in-memory farm ledgers for tests.
package testfarm

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/vechain/tokenfarm/deploy"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/logdb"
	"github.com/vechain/tokenfarm/lvldb"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

// DefaultNow is the clock of farms built without WithNow.
var DefaultNow = time.Unix(1_700_000_000, 0)

// Builder implements the builder pattern for creating a test farm.
type Builder struct {
	cfg   *deploy.Config
	feeds ledger.Feeds
	now   func() time.Time
}

func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the deployment config, deploy.DefaultConfig() if not set.
func (b *Builder) WithConfig(cfg *deploy.Config) *Builder {
	b.cfg = cfg
	return b
}

// WithFeeds replaces the mock feeds of the deployment.
func (b *Builder) WithFeeds(feeds ledger.Feeds) *Builder {
	b.feeds = feeds
	return b
}

// WithNow sets the clock of the ledger.
func (b *Builder) WithNow(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build deploys a farm on fresh in-memory stores.
func (b *Builder) Build() (*Farm, error) {
	cfg := b.cfg
	if cfg == nil {
		cfg = deploy.DefaultConfig()
	}
	feeds := b.feeds
	if feeds == nil {
		feeds = ledger.SoloFeeds(oracle.Options{Timeout: time.Second})
	}
	now := b.now
	if now == nil {
		now = func() time.Time { return DefaultNow }
	}

	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}
	l, err := ledger.Open(db, logDB, cfg, ledger.Options{Feeds: feeds, Now: now})
	if err != nil {
		logDB.Close()
		db.Close()
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	return &Farm{
		ledger:   l,
		db:       db,
		logDB:    logDB,
		accounts: deploy.DevAccounts(),
	}, nil
}

// New creates a farm with the default deployment.
func New() (*Farm, error) {
	return NewBuilder().Build()
}

// Farm is a deployed ledger with its stores.
type Farm struct {
	ledger   *ledger.Ledger
	db       *lvldb.LevelDB
	logDB    *logdb.LogDB
	accounts []deploy.DevAccount
}

func (f *Farm) Ledger() *ledger.Ledger { return f.ledger }
func (f *Farm) DB() *lvldb.LevelDB     { return f.db }
func (f *Farm) LogDB() *logdb.LogDB    { return f.logDB }

// Deployment returns the addresses of the deployed contracts.
func (f *Farm) Deployment() *deploy.Deployment {
	return f.ledger.Deployment()
}

// Owner is the deployer, holding the kept reward tokens and the mock token supplies.
func (f *Farm) Owner() thor.Address {
	return f.ledger.Deployment().Deployer
}

// Account returns the i-th dev account.
func (f *Farm) Account(i int) thor.Address {
	return f.accounts[i].Address
}

// Token returns the address of the named token, the reward token included.
func (f *Farm) Token(name string) thor.Address {
	addr, ok := f.Deployment().Token(name)
	if !ok {
		panic("unknown token " + name)
	}
	return addr
}

// Feed returns the address of the named feed.
func (f *Farm) Feed(name string) thor.Address {
	addr, ok := f.Deployment().Feed(name)
	if !ok {
		panic("unknown feed " + name)
	}
	return addr
}

// Fund transfers amount of token from the owner to account.
func (f *Farm) Fund(token, account thor.Address, amount *big.Int) error {
	_, err := f.ledger.Transfer(token, f.Owner(), account, amount)
	return err
}

// Stake approves the farm and stakes amount of token for account.
func (f *Farm) Stake(account, token thor.Address, amount *big.Int) (*ledger.Receipt, error) {
	if _, err := f.ledger.Approve(token, account, f.Deployment().Farm, amount); err != nil {
		return nil, err
	}
	return f.ledger.Stake(context.Background(), account, token, amount)
}

// Close releases the ledger and its stores.
func (f *Farm) Close() {
	f.ledger.Close()
	f.logDB.Close()
	f.db.Close()
}
