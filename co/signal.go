// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides the channel to wait on.
// A true read means Signal, a false read (closed channel) means Broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal announces an event to waiting goroutines. Unlike sync.Cond it's channel based,
// so waiting can be combined with other cases in a select.
type Signal struct {
	l  sync.Mutex
	ch chan bool
}

func (s *Signal) current() chan bool {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
	return s.ch
}

// Signal wakes one waiter. It's remembered until consumed.
func (s *Signal) Signal() {
	s.l.Lock()
	defer s.l.Unlock()

	select {
	case s.current() <- true:
	default:
	}
}

// Broadcast wakes every waiter.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	close(s.current())
	s.ch = make(chan bool, 1)
}

// NewWaiter creates a waiter. Each call of C returns the channel of the round the waiter is in,
// then moves it to the current round.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	ref := s.current()
	s.l.Unlock()

	return waiterFunc(func() <-chan bool {
		ch := ref

		s.l.Lock()
		ref = s.current()
		s.l.Unlock()

		return ch
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool {
	return w()
}
