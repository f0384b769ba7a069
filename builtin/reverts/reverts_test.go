// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New("test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Nil(t, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertKinds(t *testing.T) {
	revert := Newf(ErrUnauthorized, "caller %s is not the owner", "0x01")
	assert.Equal(t, "unauthorized: caller 0x01 is not the owner", revert.Error())
	assert.Equal(t, "caller 0x01 is not the owner", revert.Message())
	assert.True(t, errors.Is(revert, ErrUnauthorized))
	assert.False(t, errors.Is(revert, ErrInvalidOperation))

	wrapped := pkgerrors.WithMessage(revert, "add allowed token")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, errors.Is(wrapped, ErrUnauthorized))
}
