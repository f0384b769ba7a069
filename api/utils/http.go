// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vechain/tokenfarm/builtin/reverts"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/oracle"
)

var logger = log.WithContext("pkg", "api-utils")

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// StatusOf maps an operation error to the status it's responded with.
func StatusOf(err error) int {
	var he *httpError
	switch {
	case errors.As(err, &he):
		return he.status
	case errors.Is(err, reverts.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, reverts.ErrInvalidOperation), errors.Is(err, reverts.ErrNoPriceFeedBound):
		return http.StatusBadRequest
	case errors.Is(err, reverts.ErrInsufficientReserve):
		return http.StatusConflict
	case errors.Is(err, oracle.ErrUnavailable):
		return http.StatusServiceUnavailable
	case reverts.IsRevertErr(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// The status responded is StatusOf the returned error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := StatusOf(err)
		if status == http.StatusInternalServerError {
			logger.Debug("request failed", "err", err, "uri", r.URL.String())
		}
		var he *httpError
		if errors.As(err, &he) && he.cause == nil {
			w.WriteHeader(status)
			return
		}
		http.Error(w, err.Error(), status)
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
