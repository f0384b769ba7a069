// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm implements the native TokenFarm contract: an owner-curated registry of stakable
// tokens bound to price feeds, the staking ledger, and the reward engine paying stakers in the
// reward token in proportion to the USD value of their stake.
package farm

import (
	"math/big"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/solidity"
	"github.com/vechain/tokenfarm/builtin/token"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "farm")

// ABI lists the events of the farm contract.
const ABI = `[
	{"type":"event","name":"AllowedTokenAdded","anonymous":false,"inputs":[
		{"name":"token","type":"address","indexed":true},
		{"name":"index","type":"uint256","indexed":false}]},
	{"type":"event","name":"PriceFeedSet","anonymous":false,"inputs":[
		{"name":"token","type":"address","indexed":true},
		{"name":"feed","type":"address","indexed":true}]},
	{"type":"event","name":"Staked","anonymous":false,"inputs":[
		{"name":"staker","type":"address","indexed":true},
		{"name":"token","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"Unstaked","anonymous":false,"inputs":[
		{"name":"staker","type":"address","indexed":true},
		{"name":"token","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]},
	{"type":"event","name":"RewardIssued","anonymous":false,"inputs":[
		{"name":"staker","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}]}
]`

var (
	Events                 = solidity.MustParseEvents(ABI)
	eventAllowedTokenAdded = Events["AllowedTokenAdded"]
	eventPriceFeedSet      = Events["PriceFeedSet"]
	eventStaked            = Events["Staked"]
	eventUnstaked          = Events["Unstaked"]
	eventRewardIssued      = Events["RewardIssued"]
)

var (
	slotOwner          = nameToSlot("owner")
	slotRewardToken    = nameToSlot("reward-token")
	slotAllowedTokens  = nameToSlot("allowed-tokens")
	slotAllowedIndex   = nameToSlot("allowed-index")
	slotPriceFeeds     = nameToSlot("price-feeds")
	slotStakingBalance = nameToSlot("staking-balance")
	slotUniqueTokens   = nameToSlot("unique-tokens-staked")
	slotStakers        = nameToSlot("stakers")
	slotStakerIndex    = nameToSlot("staker-index")
	slotTotalStaked    = nameToSlot("total-staked")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Farm implements the native methods of TokenFarm.
type Farm struct {
	context        *solidity.Context
	feeds          oracle.Oracle
	owner          *solidity.Address
	rewardToken    *solidity.Address
	allowedTokens  *solidity.Array[thor.Address]
	allowedIndex   *solidity.Mapping[thor.Address, uint64] // index + 1, 0 when not allowed
	priceFeeds     *solidity.Mapping[thor.Address, thor.Address]
	stakingBalance *solidity.Mapping[thor.Bytes32, *big.Int] // blake2b(token, account) -> amount
	uniqueTokens   *solidity.Mapping[thor.Address, uint64]
	stakers        *solidity.Array[thor.Address]
	stakerIndex    *solidity.Mapping[thor.Address, uint64] // index + 1, 0 when never staked
	totalStaked    *solidity.Mapping[thor.Address, *big.Int]
}

// New create a new instance. feeds is consulted whenever a stake is valued, it may be nil
// when only registry and ledger methods are used.
func New(addr thor.Address, state *state.State, feeds oracle.Oracle) *Farm {
	ctx := solidity.NewContext(addr, state)
	return &Farm{
		context:        ctx,
		feeds:          feeds,
		owner:          solidity.NewAddress(ctx, slotOwner),
		rewardToken:    solidity.NewAddress(ctx, slotRewardToken),
		allowedTokens:  solidity.NewArray[thor.Address](ctx, slotAllowedTokens),
		allowedIndex:   solidity.NewMapping[thor.Address, uint64](ctx, slotAllowedIndex),
		priceFeeds:     solidity.NewMapping[thor.Address, thor.Address](ctx, slotPriceFeeds),
		stakingBalance: solidity.NewMapping[thor.Bytes32, *big.Int](ctx, slotStakingBalance),
		uniqueTokens:   solidity.NewMapping[thor.Address, uint64](ctx, slotUniqueTokens),
		stakers:        solidity.NewArray[thor.Address](ctx, slotStakers),
		stakerIndex:    solidity.NewMapping[thor.Address, uint64](ctx, slotStakerIndex),
		totalStaked:    solidity.NewMapping[thor.Address, *big.Int](ctx, slotTotalStaked),
	}
}

func (f *Farm) Address() thor.Address {
	return f.context.Address()
}

// Initialize sets the owner and the reward token. It can be called only once.
func (f *Farm) Initialize(owner, rewardToken thor.Address) error {
	if cur, err := f.Owner(); err != nil {
		return err
	} else if !cur.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "farm %v already initialized", f.Address())
	}
	if owner.IsZero() || rewardToken.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "zero owner or reward token")
	}
	f.owner.Set(&owner)
	f.rewardToken.Set(&rewardToken)
	logger.Debug("farm initialized", "address", f.Address(), "owner", owner, "rewardToken", rewardToken)
	return nil
}

func (f *Farm) Owner() (thor.Address, error) {
	return f.owner.Get()
}

func (f *Farm) RewardToken() (thor.Address, error) {
	return f.rewardToken.Get()
}

func (f *Farm) onlyOwner(caller thor.Address) error {
	owner, err := f.Owner()
	if err != nil {
		return err
	}
	if owner.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "no farm at %v", f.Address())
	}
	if caller != owner {
		return reverts.Newf(reverts.ErrUnauthorized, "caller %v is not the owner", caller)
	}
	return nil
}

func (f *Farm) token(addr thor.Address) *token.Token {
	return token.New(addr, f.context.State())
}

// atomic runs fn on a checkpoint of the state, reverting every change and event when fn fails.
func (f *Farm) atomic(fn func() error) error {
	st := f.context.State()
	cp := st.NewCheckpoint()
	if err := fn(); err != nil {
		st.RevertTo(cp)
		return err
	}
	return nil
}
