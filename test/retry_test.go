// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, time.Millisecond, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)

	notYet := errors.New("not yet")
	err = Retry(func() error { return notYet }, time.Millisecond, 10*time.Millisecond)
	assert.ErrorIs(t, err, notYet)
	assert.Contains(t, err.Error(), "retry timeout")
}
