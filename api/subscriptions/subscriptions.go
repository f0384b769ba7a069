// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/tokenfarm/api/types"
	"github.com/vechain/tokenfarm/api/utils"
	"github.com/vechain/tokenfarm/co"
	"github.com/vechain/tokenfarm/ledger"
	"github.com/vechain/tokenfarm/log"
	"github.com/vechain/tokenfarm/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10
	// receipts buffered per subscriber
	receiptBufferSize = 64
)

// msgReader blocks until messages are available or ctx is done.
type msgReader interface {
	Read(ctx context.Context) ([]any, error)
}

type Subscriptions struct {
	ledger         *ledger.Ledger
	upgrader       *websocket.Upgrader
	backtraceLimit uint64
	done           chan struct{}
	wg             sync.WaitGroup
	closeOnce      sync.Once
}

func New(ledger *ledger.Ledger, allowedOrigins []string, backtraceLimit uint64) *Subscriptions {
	return &Subscriptions{
		ledger: ledger,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == origin || allowed == "*" {
						return true
					}
				}
				return false
			},
		},
		backtraceLimit: backtraceLimit,
		done:           make(chan struct{}),
	}
}

func parseAddressQuery(req *http.Request, name string) (*thor.Address, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return &addr, nil
}

func parseTopicQuery(req *http.Request, name string) (*thor.Bytes32, error) {
	s := req.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	topic, err := thor.ParseBytes32(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, name))
	}
	return &topic, nil
}

// parsePosition returns the first revision to deliver. Without pos only new commits are delivered.
func (s *Subscriptions) parsePosition(req *http.Request) (uint64, error) {
	current, err := s.ledger.Revision()
	if err != nil {
		return 0, err
	}
	str := req.URL.Query().Get("pos")
	if str == "" {
		return current + 1, nil
	}
	pos, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	if pos > current+1 {
		return 0, utils.BadRequest(errors.New("pos: beyond the latest revision"))
	}
	if s.backtraceLimit > 0 && current > s.backtraceLimit && pos < current-s.backtraceLimit {
		return 0, utils.Forbidden(errors.New("pos: backtrace limit exceeded"))
	}
	return pos, nil
}

func (s *Subscriptions) handleEventReader(req *http.Request) (*eventReader, error) {
	pos, err := s.parsePosition(req)
	if err != nil {
		return nil, err
	}
	criteria := &types.EventCriteria{}
	if criteria.Address, err = parseAddressQuery(req, "addr"); err != nil {
		return nil, err
	}
	if criteria.Caller, err = parseAddressQuery(req, "caller"); err != nil {
		return nil, err
	}
	topics := []**thor.Bytes32{&criteria.Topic0, &criteria.Topic1, &criteria.Topic2, &criteria.Topic3}
	for i, t := range topics {
		if *t, err = parseTopicQuery(req, "t"+strconv.Itoa(i)); err != nil {
			return nil, err
		}
	}
	return newEventReader(s.ledger, pos, &types.EventFilter{CriteriaSet: []*types.EventCriteria{criteria}}), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	var reader msgReader
	switch subject := mux.Vars(req)["subject"]; subject {
	case "event":
		r, err := s.handleEventReader(req)
		if err != nil {
			return err
		}
		reader = r
	case "receipt":
		r := newReceiptReader(s.ledger, receiptBufferSize)
		defer r.Close()
		reader = r
	default:
		return utils.HTTPError(errors.New("not found"), http.StatusNotFound)
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// since the conn is hijacked here, no error should be returned in lines below
	if err != nil {
		logger.Debug("upgrade to websocket", "err", err)
		return nil
	}

	subject := mux.Vars(req)["subject"]
	id := uuid.New()
	logger.Debug("subscription opened", "id", id, "subject", subject, "remote", req.RemoteAddr)
	metricActiveWebsocketGauge().AddWithLabel(1, map[string]string{"subject": subject})
	defer metricActiveWebsocketGauge().AddWithLabel(-1, map[string]string{"subject": subject})

	s.wg.Add(1)
	defer s.wg.Done()
	err = s.pipe(req.Context(), conn, reader)

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err != nil {
		closeMsg = websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error())
		logger.Debug("subscription closed", "id", id, "err", err)
	} else {
		logger.Debug("subscription closed", "id", id)
	}
	conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))
	conn.Close()
	return nil
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, reader msgReader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// read loop, only to handle pongs and close
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var goes co.Goes
	defer goes.Wait()
	goes.Go(func() {
		pingTicker := time.NewTicker(pingPeriod)
		defer pingTicker.Stop()
		for {
			select {
			case <-s.done:
				cancel()
				return
			case <-ctx.Done():
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					cancel()
					return
				}
			}
		}
	})

	for {
		msgs, err := reader.Read(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
	}
}

// Close ends every subscription, their connections are hijacked so the http server can't.
func (s *Subscriptions) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").
		Methods(http.MethodGet).
		Name("subscriptions_subscribe").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
