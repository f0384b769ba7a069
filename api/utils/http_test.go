// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/oracle"
	"github.com/vechain/tokenfarm/thor"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthorized", reverts.Newf(reverts.ErrUnauthorized, "caller is not the owner"), http.StatusForbidden},
		{"invalid", reverts.Newf(reverts.ErrInvalidOperation, "amount must be positive"), http.StatusBadRequest},
		{"no feed", reverts.Newf(reverts.ErrNoPriceFeedBound, "no feed"), http.StatusBadRequest},
		{"reserve", reverts.Newf(reverts.ErrInsufficientReserve, "short"), http.StatusConflict},
		{"oracle", oracle.Unavailable(thor.Address{}, errors.New("timeout")), http.StatusServiceUnavailable},
		{"wrapped", pkgerrors.Wrap(reverts.Newf(reverts.ErrUnauthorized, "x"), "stake"), http.StatusForbidden},
		{"http error", BadRequest(errors.New("body")), http.StatusBadRequest},
		{"other", errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestWrapHandlerFunc(t *testing.T) {
	handler := WrapHandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		switch r.URL.Path {
		case "/ok":
			return WriteJSON(w, M{"ok": true})
		case "/forbidden":
			return Forbidden(errors.New("no"))
		default:
			return reverts.Newf(reverts.ErrInsufficientReserve, "reserve too low")
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, JSONContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "{\"ok\":true}\n", rec.Body.String())

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/forbidden", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "no", strings.TrimSpace(rec.Body.String()))

	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/rewards", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "reserve too low")
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	assert.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v))
}
