// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package aggregator implements a native mock of the Chainlink V3 aggregator,
// the price feed deployed on solo networks.
package aggregator

import (
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/solidity"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

const (
	Description = "v0.8/tests/MockV3Aggregator.sol"
	Version     = 0
)

// ABI lists the events of the aggregator contract.
const ABI = `[
	{"type":"event","name":"AnswerUpdated","anonymous":false,"inputs":[
		{"name":"current","type":"int256","indexed":true},
		{"name":"roundId","type":"uint256","indexed":true},
		{"name":"updatedAt","type":"uint256","indexed":false}]}
]`

var (
	Events             = solidity.MustParseEvents(ABI)
	eventAnswerUpdated = Events["AnswerUpdated"]
)

var (
	slotInitialized = nameToSlot("initialized")
	slotDecimals    = nameToSlot("decimals")
	slotLatestRound = nameToSlot("latest-round")
	slotRounds      = nameToSlot("rounds")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Round is the stored data of a round.
type Round struct {
	Answer    *big.Int
	StartedAt uint64
	UpdatedAt uint64
}

// RoundData is the answer of LatestRoundData, AggregatorV3Interface style.
type RoundData struct {
	RoundID         *big.Int
	Answer          *big.Int
	StartedAt       time.Time
	UpdatedAt       time.Time
	AnsweredInRound *big.Int
}

// Aggregator implements the native methods of MockV3Aggregator.
type Aggregator struct {
	context     *solidity.Context
	initialized *solidity.Value[bool]
	decimals    *solidity.Value[uint8]
	latestRound *solidity.Uint256
	rounds      *solidity.Mapping[*big.Int, *Round]
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Aggregator {
	ctx := solidity.NewContext(addr, state)
	return &Aggregator{
		context:     ctx,
		initialized: solidity.NewValue[bool](ctx, slotInitialized),
		decimals:    solidity.NewValue[uint8](ctx, slotDecimals),
		latestRound: solidity.NewUint256(ctx, slotLatestRound),
		rounds:      solidity.NewMapping[*big.Int, *Round](ctx, slotRounds),
	}
}

func (a *Aggregator) Address() thor.Address {
	return a.context.Address()
}

// Initialize sets the decimals and starts the first round with initialAnswer.
func (a *Aggregator) Initialize(decimals uint8, initialAnswer *big.Int, now time.Time) error {
	if ok, err := a.IsInitialized(); err != nil {
		return err
	} else if ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "aggregator %v already initialized", a.Address())
	}
	if decimals > thor.MaxDecimals {
		return reverts.Newf(reverts.ErrInvalidOperation, "decimals %d out of range", decimals)
	}
	if err := a.initialized.Set(true); err != nil {
		return err
	}
	if err := a.decimals.Set(decimals); err != nil {
		return err
	}
	return a.UpdateAnswer(initialAnswer, now)
}

func (a *Aggregator) IsInitialized() (bool, error) {
	return a.initialized.Get()
}

func (a *Aggregator) Decimals() (uint8, error) {
	return a.decimals.Get()
}

// UpdateAnswer starts a new round with answer.
func (a *Aggregator) UpdateAnswer(answer *big.Int, now time.Time) error {
	if ok, err := a.IsInitialized(); err != nil {
		return err
	} else if !ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "no aggregator at %v", a.Address())
	}
	if answer == nil || answer.Sign() < 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "invalid answer %v", answer)
	}
	if err := a.latestRound.Add(big.NewInt(1)); err != nil {
		return err
	}
	roundID, err := a.latestRound.Get()
	if err != nil {
		return err
	}
	ts := uint64(now.Unix())
	if err := a.rounds.Set(roundID, &Round{Answer: answer, StartedAt: ts, UpdatedAt: ts}); err != nil {
		return errors.Wrap(err, "failed to set round")
	}
	return a.context.Emit(eventAnswerUpdated, answer, roundID, new(big.Int).SetUint64(ts))
}

// GetRoundData returns the data of a past round.
func (a *Aggregator) GetRoundData(roundID *big.Int) (*RoundData, error) {
	latest, err := a.latestRound.Get()
	if err != nil {
		return nil, err
	}
	if roundID.Sign() <= 0 || roundID.Cmp(latest) > 0 {
		return nil, reverts.Newf(reverts.ErrInvalidOperation, "no data present for round %v", roundID)
	}
	r, err := a.rounds.Get(roundID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get round")
	}
	return &RoundData{
		RoundID:         roundID,
		Answer:          r.Answer,
		StartedAt:       time.Unix(int64(r.StartedAt), 0),
		UpdatedAt:       time.Unix(int64(r.UpdatedAt), 0),
		AnsweredInRound: roundID,
	}, nil
}

// LatestRoundData returns the data of the latest round.
func (a *Aggregator) LatestRoundData() (*RoundData, error) {
	latest, err := a.latestRound.Get()
	if err != nil {
		return nil, err
	}
	return a.GetRoundData(latest)
}
