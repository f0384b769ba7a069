// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/thor"
)

type Tokens struct {
	ledger *ledger.Ledger
}

func New(ledger *ledger.Ledger) *Tokens {
	return &Tokens{ledger}
}

func parseAddress(req *http.Request, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(mux.Vars(req)[name])
	if err != nil {
		return thor.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	info, err := t.ledger.TokenInfo(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Token{
		Address:     info.Address,
		Name:        info.Name,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
		TotalSupply: types.NewAmount(info.TotalSupply),
	})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	account, err := parseAddress(req, "account")
	if err != nil {
		return err
	}
	bal, err := t.ledger.BalanceOf(addr, account)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Balance{Token: addr, Account: account, Balance: types.NewAmount(bal)})
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	owner, err := parseAddress(req, "owner")
	if err != nil {
		return err
	}
	spender, err := parseAddress(req, "spender")
	if err != nil {
		return err
	}
	allowance, err := t.ledger.Allowance(addr, owner, spender)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Allowance{Token: addr, Owner: owner, Spender: spender, Allowance: types.NewAmount(allowance)})
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	var body types.TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	receipt, err := t.ledger.Transfer(addr, body.Caller, body.To, types.Int(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req, "address")
	if err != nil {
		return err
	}
	var body types.ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return utils.BadRequest(errors.New("body: amount required"))
	}
	receipt, err := t.ledger.Approve(addr, body.Caller, body.Spender, types.Int(body.Amount))
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("tokens_get_token").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
	sub.Path("/{address}/balances/{account}").
		Methods(http.MethodGet).
		Name("tokens_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/{address}/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("tokens_get_allowance").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{address}/transfer").
		Methods(http.MethodPost).
		Name("tokens_transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{address}/approve").
		Methods(http.MethodPost).
		Name("tokens_approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
}
