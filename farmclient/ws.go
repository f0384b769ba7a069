// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farmclient

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
)

var ErrUnexpectedMsg = errors.New("unexpected message format")

// EventWrapper carries a message or the error that ended the subscription.
type EventWrapper[T any] struct {
	Data  T
	Error error
}

// Subscription is an open websocket, Close ends it.
type Subscription[T any] struct {
	C    <-chan EventWrapper[T]
	conn *websocket.Conn
	done chan struct{}
	once sync.Once
}

func (s *Subscription[T]) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.conn.Close()
}

// SubscribeEvents streams the events matching query, eg. "pos=1&addr=0x...".
func (c *Client) SubscribeEvents(query string) (*Subscription[*types.FilteredEvent], error) {
	conn, err := c.connect("/subscriptions/event", query)
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[types.FilteredEvent](conn), nil
}

// SubscribeReceipts streams the receipts of the operations committed after subscribing.
func (c *Client) SubscribeReceipts() (*Subscription[*types.Receipt], error) {
	conn, err := c.connect("/subscriptions/receipt", "")
	if err != nil {
		return nil, fmt.Errorf("unable to connect - %w", err)
	}
	return subscribe[types.Receipt](conn), nil
}

func subscribe[T any](conn *websocket.Conn) *Subscription[*T] {
	ch := make(chan EventWrapper[*T])
	sub := &Subscription[*T]{C: ch, conn: conn, done: make(chan struct{})}
	go func() {
		defer close(ch)
		defer conn.Close()

		for {
			var data T
			if err := conn.ReadJSON(&data); err != nil {
				select {
				case ch <- EventWrapper[*T]{Error: fmt.Errorf("%w: %w", ErrUnexpectedMsg, err)}:
				case <-sub.done:
				}
				return
			}
			select {
			case ch <- EventWrapper[*T]{Data: &data}:
			case <-sub.done:
				return
			}
		}
	}()
	return sub
}

func (c *Client) connect(endpoint, rawQuery string) (*websocket.Conn, error) {
	var u url.URL
	switch {
	case strings.HasPrefix(c.url, "https://"):
		u = url.URL{Scheme: "wss", Host: strings.TrimPrefix(c.url, "https://")}
	case strings.HasPrefix(c.url, "http://"):
		u = url.URL{Scheme: "ws", Host: strings.TrimPrefix(c.url, "http://")}
	default:
		return nil, errors.New("invalid url")
	}
	u.Path = endpoint
	u.RawQuery = rawQuery

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
