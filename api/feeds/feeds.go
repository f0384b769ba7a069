// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package feeds

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/thor"
)

type Feeds struct {
	ledger *ledger.Ledger
}

func New(ledger *ledger.Ledger) *Feeds {
	return &Feeds{ledger}
}

func (f *Feeds) handleGetFeed(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	p, err := f.ledger.LatestPrice(req.Context(), addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &types.Feed{
		Address:   addr,
		Answer:    types.NewAmount(p.Answer),
		Decimals:  p.Decimals,
		RoundID:   types.NewAmount(p.RoundID),
		UpdatedAt: uint64(p.UpdatedAt.Unix()),
	})
}

// handleUpdateAnswer responds 403 off solo networks.
func (f *Feeds) handleUpdateAnswer(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var body types.UpdateAnswerRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Answer == nil {
		return utils.BadRequest(errors.New("body: answer required"))
	}
	receipt, err := f.ledger.UpdateFeedAnswer(addr, types.Int(body.Answer))
	if err != nil {
		if errors.Is(err, ledger.ErrNotSolo) {
			return utils.Forbidden(err)
		}
		return err
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (f *Feeds) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("feeds_get_feed").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetFeed))
	sub.Path("/{address}").
		Methods(http.MethodPost).
		Name("feeds_update_answer").
		HandlerFunc(utils.WrapHandlerFunc(f.handleUpdateAnswer))
}
