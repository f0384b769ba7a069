// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	if logsLimit == 0 || logsLimit > logdb.MaxLimit {
		logsLimit = logdb.MaxLimit
	}
	return &Logs{
		db,
		logsLimit,
	}
}

// filter query events with option
func (l *Logs) filter(ctx context.Context, ef *types.EventFilter) ([]*types.FilteredEvent, error) {
	events, err := l.db.FilterEvents(ctx, types.ConvertEventFilter(ef, l.limit))
	if err != nil {
		return nil, err
	}
	fes := make([]*types.FilteredEvent, len(events))
	for i, e := range events {
		fes[i] = types.ConvertEvent(e)
	}
	return fes, nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter types.EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := filter.Validate(l.limit); err != nil {
		return utils.BadRequest(err)
	}
	fes, err := l.filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, fes)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodPost).
		Name("logs_filter_event").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterEvents))
}
