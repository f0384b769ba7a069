// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Rejection kinds. Match them with errors.Is.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidOperation    = errors.New("invalid operation")
	ErrNoPriceFeedBound    = errors.New("no price feed bound")
	ErrInsufficientReserve = errors.New("insufficient reserve")
)

// ErrRevert is a contract call rejection. The state changes of the call are discarded.
type ErrRevert struct {
	kind    error
	message string
}

// New creates a revert without kind.
func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Newf creates a revert of the given kind.
func Newf(kind error, format string, args ...any) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	if e.kind == nil {
		return e.message
	}
	return e.kind.Error() + ": " + e.message
}

// Kind returns the rejection kind, nil if none.
func (e *ErrRevert) Kind() error {
	return e.kind
}

// Message returns the message without the kind prefix.
func (e *ErrRevert) Message() string {
	return e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
