// Copyright (c) 2025 The lockstake developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed-operation records over
// websocket.
package subscriptions

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/lockstake/lockstake/api/restutil"
	"github.com/lockstake/lockstake/ledger"
	"github.com/lockstake/lockstake/lockstake"
	"github.com/lockstake/lockstake/log"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeTimeout = 10 * time.Second
	pingPeriod   = 50 * time.Second
	subBuffer    = 64
)

// RecordMessage is one streamed record.
type RecordMessage struct {
	Kind    string            `json:"kind"`
	Account lockstake.Address `json:"account"`
	Payload json.RawMessage   `json:"payload"`
}

type subscriber struct {
	ch     chan *RecordMessage
	filter *lockstake.Address
}

// Subscriptions fans committed records out to websocket clients. It is
// registered as a ledger sink.
type Subscriptions struct {
	upgrader websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func New(allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
		subs: make(map[*subscriber]struct{}),
	}
}

// Deliver implements ledger.Sink. A slow client drops messages instead
// of stalling the ledger.
func (s *Subscriptions) Deliver(rec ledger.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		logger.Warn("failed to marshal record", "kind", rec.Kind(), "err", err)
		return
	}
	msg := &RecordMessage{
		Kind:    rec.Kind(),
		Account: rec.Account(),
		Payload: payload,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if sub.filter != nil && *sub.filter != msg.Account {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			logger.Debug("dropping record for slow subscriber", "kind", msg.Kind)
		}
	}
}

func (s *Subscriptions) subscribe(filter *lockstake.Address) *subscriber {
	sub := &subscriber{ch: make(chan *RecordMessage, subBuffer), filter: filter}
	s.mu.Lock()
	s.subs[sub] = struct{}{}
	s.mu.Unlock()
	return sub
}

func (s *Subscriptions) unsubscribe(sub *subscriber) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

func (s *Subscriptions) handleSubscribeRecords(w http.ResponseWriter, req *http.Request) error {
	var filter *lockstake.Address
	if q := req.URL.Query().Get("address"); q != "" {
		addr, err := lockstake.ParseAddress(q)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "address"))
		}
		filter = &addr
	}

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	sub := s.subscribe(filter)
	defer s.unsubscribe(sub)

	s.wg.Add(1)
	defer s.wg.Done()

	// drain reads to observe client-side close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-s.done:
			return nil
		case <-closed:
			return nil
		case msg := <-sub.ch:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return nil
			}
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}

// Close shuts down all subscriber connections.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/records").
		Methods(http.MethodGet).
		Name("WS /subscriptions/records").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeRecords))
}
