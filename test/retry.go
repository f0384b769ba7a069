// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package test holds helpers shared by tests that wait on background goroutines.
package test

import (
	"time"

	"github.com/pkg/errors"
)

// Retry calls fn every period until it returns nil. After timeout the last error is returned.
func Retry(fn func() error, period, timeout time.Duration) error {
	deadline := time.After(timeout)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		err := fn()
		if err == nil {
			return nil
		}
		select {
		case <-deadline:
			return errors.WithMessage(err, "retry timeout")
		case <-ticker.C:
		}
	}
}
