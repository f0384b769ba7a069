// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package deploy sets up the farm: mock feeds and tokens, the reward token, the farm itself and
// its allowed tokens.
package deploy

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/builtin/aggregator"
	"github.com/vechain/tokenfarm/builtin/farm"
	"github.com/vechain/tokenfarm/builtin/solidity"
	"github.com/vechain/tokenfarm/builtin/token"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "deploy")

var (
	// RecordAddress holds the deployment record.
	RecordAddress = thor.BytesToAddress([]byte("deployment"))
	slotRecord    = thor.BytesToBytes32([]byte("record"))
)

// Contract is a named deployed contract.
type Contract struct {
	Name    string       `json:"name"`
	Address thor.Address `json:"address"`
}

// Deployment records the addresses of a deployment.
type Deployment struct {
	Network     string
	Deployer    thor.Address
	Farm        thor.Address
	RewardToken thor.Address
	Tokens      []Contract
	Feeds       []Contract
	Time        uint64
}

// Token returns the address of the named token, the reward token included.
func (d *Deployment) Token(name string) (thor.Address, bool) {
	if name == RewardTokenName {
		return d.RewardToken, true
	}
	return lookup(d.Tokens, name)
}

// Feed returns the address of the named feed.
func (d *Deployment) Feed(name string) (thor.Address, bool) {
	return lookup(d.Feeds, name)
}

func lookup(contracts []Contract, name string) (thor.Address, bool) {
	for _, c := range contracts {
		if c.Name == name {
			return c.Address, true
		}
	}
	return thor.Address{}, false
}

func record(st *state.State) *solidity.Value[*Deployment] {
	return solidity.NewValue[*Deployment](solidity.NewContext(RecordAddress, st), slotRecord)
}

// Load returns the deployment recorded in st, nil if none.
func Load(st *state.State) (*Deployment, error) {
	d, err := record(st).Get()
	if err != nil {
		return nil, errors.Wrap(err, "load deployment")
	}
	if d.Farm.IsZero() {
		return nil, nil
	}
	return d, nil
}

// Builder helper to build a deployment.
type Builder struct {
	config    *Config
	deployer  thor.Address
	timestamp time.Time

	stateProcs []func(st *state.State, d *Deployment) error
}

// NewBuilder creates a builder deploying cfg.
func NewBuilder(cfg *Config) *Builder {
	return &Builder{config: cfg, timestamp: time.Now()}
}

// Deployer set the deployer, who owns the farm and receives every minted supply.
func (b *Builder) Deployer(addr thor.Address) *Builder {
	b.deployer = addr
	return b
}

// Timestamp set the time of the initial feed rounds.
func (b *Builder) Timestamp(t time.Time) *Builder {
	b.timestamp = t
	return b
}

// State add a process run on the state after deployment.
func (b *Builder) State(proc func(st *state.State, d *Deployment) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build deploys on st. Nothing is kept in st on failure.
func (b *Builder) Build(st *state.State) (*Deployment, error) {
	cp := st.NewCheckpoint()
	d, err := b.build(st)
	if err != nil {
		st.RevertTo(cp)
		return nil, err
	}
	return d, nil
}

func (b *Builder) build(st *state.State) (*Deployment, error) {
	if err := b.config.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	if b.deployer.IsZero() {
		return nil, errors.New("deployer required")
	}
	if existing, err := Load(st); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, errors.Errorf("already deployed, farm at %v", existing.Farm)
	}

	var nonce uint64
	create := func() thor.Address {
		addr := thor.CreateContractAddress(b.deployer, nonce)
		nonce++
		return addr
	}

	d := &Deployment{
		Network:  b.config.Network,
		Deployer: b.deployer,
		Time:     uint64(b.timestamp.Unix()),
	}

	// mocks first
	for _, f := range b.config.Feeds {
		if f.Address != "" {
			d.Feeds = append(d.Feeds, Contract{f.Name, thor.MustParseAddress(f.Address)})
			continue
		}
		addr := create()
		if err := aggregator.New(addr, st).Initialize(f.Decimals, f.InitialAnswer.Int(), b.timestamp); err != nil {
			return nil, errors.Wrapf(err, "deploy feed %s", f.Name)
		}
		d.Feeds = append(d.Feeds, Contract{f.Name, addr})
		logger.Info("mock price feed deployed", "name", f.Name, "address", addr)
	}
	for _, t := range b.config.Tokens {
		addr := create()
		if err := token.New(addr, st).Initialize(t.Label, t.Symbol, t.Decimals, t.Supply.Int(), b.deployer); err != nil {
			return nil, errors.Wrapf(err, "deploy token %s", t.Name)
		}
		d.Tokens = append(d.Tokens, Contract{t.Name, addr})
		logger.Info("mock token deployed", "name", t.Name, "address", addr)
	}

	rt := b.config.RewardToken
	d.RewardToken = create()
	reward := token.New(d.RewardToken, st)
	if err := reward.Initialize(rt.Label, rt.Symbol, rt.Decimals, b.config.InitialSupply.Int(), b.deployer); err != nil {
		return nil, errors.Wrap(err, "deploy reward token")
	}

	d.Farm = create()
	f := farm.New(d.Farm, st, nil)
	if err := f.Initialize(b.deployer, d.RewardToken); err != nil {
		return nil, errors.Wrap(err, "deploy farm")
	}

	// fund the farm with everything but the kept amount
	supply, err := reward.TotalSupply()
	if err != nil {
		return nil, err
	}
	funding := new(big.Int).Sub(supply, b.config.KeptAmount.Int())
	if err := reward.Transfer(b.deployer, d.Farm, funding); err != nil {
		return nil, errors.Wrap(err, "fund farm")
	}

	for _, binding := range b.config.Bindings {
		tokenAddr, _ := d.Token(binding.Token)
		feedAddr, _ := d.Feed(binding.Feed)
		if err := f.AddAllowedToken(b.deployer, tokenAddr); err != nil {
			return nil, errors.Wrapf(err, "allow %s", binding.Token)
		}
		if err := f.SetPriceFeed(b.deployer, tokenAddr, feedAddr); err != nil {
			return nil, errors.Wrapf(err, "bind %s to %s", binding.Token, binding.Feed)
		}
	}

	if err := record(st).Set(d); err != nil {
		return nil, errors.Wrap(err, "store deployment")
	}
	for _, proc := range b.stateProcs {
		if err := proc(st, d); err != nil {
			return nil, errors.Wrap(err, "state process")
		}
	}
	logger.Info("farm deployed", "network", d.Network, "farm", d.Farm, "rewardToken", d.RewardToken, "funding", funding)
	return d, nil
}

// Deploy deploys cfg on st, owned by deployer.
func Deploy(st *state.State, cfg *Config, deployer thor.Address, now time.Time) (*Deployment, error) {
	return NewBuilder(cfg).Deployer(deployer).Timestamp(now).Build(st)
}

// Check verifies that every bound feed answers, it's run on live networks before serving.
func Check(ctx context.Context, d *Deployment, f *farm.Farm) error {
	tokens, err := f.AllowedTokens()
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		if _, _, err := f.GetTokenValue(ctx, tok); err != nil {
			return errors.Wrapf(err, "token %v", tok)
		}
	}
	logger.Debug("price feeds checked", "network", d.Network, "tokens", len(tokens))
	return nil
}
