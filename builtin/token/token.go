// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token implements a native ERC20 token contract.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/builtin/solidity"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/state"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "token")

// ABI lists the events of the token contract.
const ABI = `[
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[
		{"name":"from","type":"address","indexed":true},
		{"name":"to","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[
		{"name":"owner","type":"address","indexed":true},
		{"name":"spender","type":"address","indexed":true},
		{"name":"value","type":"uint256","indexed":false}]}
]`

var (
	Events        = solidity.MustParseEvents(ABI)
	eventTransfer = Events["Transfer"]
	eventApproval = Events["Approval"]
)

var (
	slotInitialized = nameToSlot("initialized")
	slotName        = nameToSlot("name")
	slotSymbol      = nameToSlot("symbol")
	slotDecimals    = nameToSlot("decimals")
	slotTotalSupply = nameToSlot("total-supply")
	slotBalances    = nameToSlot("balances")
	slotAllowances  = nameToSlot("allowances")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Token implements the native methods of an ERC20 token.
type Token struct {
	context     *solidity.Context
	initialized *solidity.Value[bool]
	name        *solidity.Value[string]
	symbol      *solidity.Value[string]
	decimals    *solidity.Value[uint8]
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[thor.Bytes32, *big.Int] // blake2b(owner, spender) -> amount
}

// New create a new instance.
func New(addr thor.Address, state *state.State) *Token {
	ctx := solidity.NewContext(addr, state)
	return &Token{
		context:     ctx,
		initialized: solidity.NewValue[bool](ctx, slotInitialized),
		name:        solidity.NewValue[string](ctx, slotName),
		symbol:      solidity.NewValue[string](ctx, slotSymbol),
		decimals:    solidity.NewValue[uint8](ctx, slotDecimals),
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *big.Int](ctx, slotBalances),
		allowances:  solidity.NewMapping[thor.Bytes32, *big.Int](ctx, slotAllowances),
	}
}

func allowanceKey(owner, spender thor.Address) thor.Bytes32 {
	return thor.Blake2b(owner.Bytes(), spender.Bytes())
}

// Address returns the contract address.
func (t *Token) Address() thor.Address {
	return t.context.Address()
}

// Initialize sets the metadata and mints supply to holder. It can be called only once.
func (t *Token) Initialize(name, symbol string, decimals uint8, supply *big.Int, holder thor.Address) error {
	if ok, err := t.IsInitialized(); err != nil {
		return err
	} else if ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "token %v already initialized", t.Address())
	}
	if holder.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "mint to the zero address")
	}
	if err := t.initialized.Set(true); err != nil {
		return err
	}
	if err := t.name.Set(name); err != nil {
		return err
	}
	if err := t.symbol.Set(symbol); err != nil {
		return err
	}
	if err := t.decimals.Set(decimals); err != nil {
		return err
	}
	if err := t.totalSupply.Set(supply); err != nil {
		return err
	}
	if err := t.balances.Set(holder, supply); err != nil {
		return err
	}
	logger.Debug("token initialized", "address", t.Address(), "symbol", symbol, "supply", supply)
	return t.context.Emit(eventTransfer, thor.Address{}, holder, supply)
}

// IsInitialized returns whether a token lives at the address.
func (t *Token) IsInitialized() (bool, error) {
	return t.initialized.Get()
}

func (t *Token) Name() (string, error) {
	return t.name.Get()
}

func (t *Token) Symbol() (string, error) {
	return t.symbol.Get()
}

func (t *Token) Decimals() (uint8, error) {
	return t.decimals.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	amount, err := t.allowances.Get(allowanceKey(owner, spender))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get allowance")
	}
	return amount, nil
}

// Transfer moves amount from one account to another.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "transfer to the zero address")
	}

	fromBal, err := t.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "transfer amount exceeds balance")
	}
	if err := t.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}

	toBal, err := t.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return err
	}
	return t.context.Emit(eventTransfer, from, to, amount)
}

// Approve sets the amount spender may transfer on behalf of owner.
func (t *Token) Approve(owner, spender thor.Address, amount *big.Int) error {
	if err := t.checkInitialized(); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if spender.IsZero() {
		return reverts.Newf(reverts.ErrInvalidOperation, "approve to the zero address")
	}
	if err := t.allowances.Set(allowanceKey(owner, spender), amount); err != nil {
		return err
	}
	return t.context.Emit(eventApproval, owner, spender, amount)
}

// TransferFrom moves amount from `from` to `to`, spending the allowance given to spender.
func (t *Token) TransferFrom(spender, from, to thor.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "insufficient allowance")
	}
	if err := t.allowances.Set(allowanceKey(from, spender), allowance.Sub(allowance, amount)); err != nil {
		return err
	}
	return t.Transfer(from, to, amount)
}

func (t *Token) checkInitialized() error {
	ok, err := t.IsInitialized()
	if err != nil {
		return err
	}
	if !ok {
		return reverts.Newf(reverts.ErrInvalidOperation, "no token at %v", t.Address())
	}
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.Newf(reverts.ErrInvalidOperation, "invalid amount %v", amount)
	}
	if _, err := solidity.ToUint256(amount); err != nil {
		return err
	}
	return nil
}
