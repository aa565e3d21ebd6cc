// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/sealed-auction/api/utils"
	"github.com/meterio/sealed-auction/block"
	"github.com/meterio/sealed-auction/chain"
	"github.com/meterio/sealed-auction/meter"
	"github.com/pkg/errors"
)

var log = slog.Default().With("pkg", "subscriptions")

const (
	writeTimeout = 10 * time.Second
	pingPeriod   = 30 * time.Second
	pongWait     = pingPeriod * 2
)

type msgReader interface {
	Read() (msgs []interface{}, hasMore bool, err error)
}

// Subscriptions pipes blocks, events and transfers to websocket clients.
type Subscriptions struct {
	chain    *chain.Chain
	upgrader *websocket.Upgrader

	mu      sync.Mutex
	waiters map[chan struct{}]struct{}
	closed  bool

	newBlockCh chan *chain.NewBlockEvent
	done       chan struct{}
	wg         sync.WaitGroup
}

func New(ch *chain.Chain, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		chain: ch,
		upgrader: &websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		waiters:    make(map[chan struct{}]struct{}),
		newBlockCh: make(chan *chain.NewBlockEvent, 16),
		done:       make(chan struct{}),
	}
	sub := ch.SubscribeNewBlock(s.newBlockCh)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer sub.Unsubscribe()
		for {
			select {
			case <-s.newBlockCh:
				s.wakeAll()
			case <-sub.Err():
				return
			case <-s.done:
				return
			}
		}
	}()
	return s
}

func originChecker(allowedOrigins []string) func(*http.Request) bool {
	allowed := make(map[string]bool)
	for _, o := range allowedOrigins {
		o = strings.ToLower(strings.TrimSpace(o))
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			allowed[o] = true
		}
	}
	return func(req *http.Request) bool {
		origin := req.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return allowed[strings.ToLower(origin)]
	}
}

func (s *Subscriptions) addWaiter() chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{}, 1)
	s.waiters[ch] = struct{}{}
	return ch
}

func (s *Subscriptions) removeWaiter(ch chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.waiters, ch)
}

func (s *Subscriptions) wakeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.waiters {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// parsePosition returns the number of the first block to deliver. pos is the
// id of the last block the client has, defaulting to the best block.
func (s *Subscriptions) parsePosition(posStr string) (uint32, error) {
	best := s.chain.BestBlock()
	if posStr == "" {
		return best.Header().Number() + 1, nil
	}
	pos, err := meter.ParseBytes32(posStr)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "pos"))
	}
	num := block.Number(pos)
	if num > best.Header().Number() {
		return 0, utils.Forbidden(errors.New("pos: not on trunk"))
	}
	trunk, err := s.chain.GetTrunkBlock(num)
	if err != nil {
		return 0, err
	}
	if trunk.Header().ID() != pos {
		return 0, utils.Forbidden(errors.New("pos: not on trunk"))
	}
	return num + 1, nil
}

func parseAddress(s string) (*meter.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := meter.ParseAddress(s)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func parseTopic(s string) (*meter.Bytes32, error) {
	if s == "" {
		return nil, nil
	}
	topic, err := meter.ParseBytes32(s)
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *Subscriptions) handleBlockReader(req *http.Request) (msgReader, error) {
	next, err := s.parsePosition(req.URL.Query().Get("pos"))
	if err != nil {
		return nil, err
	}
	return newBlockReader(s.chain, next), nil
}

func (s *Subscriptions) handleEventReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	next, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	filter := &EventFilter{}
	if filter.Address, err = parseAddress(query.Get("addr")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "addr"))
	}
	topics := []**meter.Bytes32{&filter.Topic0, &filter.Topic1, &filter.Topic2, &filter.Topic3, &filter.Topic4}
	for i, name := range []string{"t0", "t1", "t2", "t3", "t4"} {
		if *topics[i], err = parseTopic(query.Get(name)); err != nil {
			return nil, utils.BadRequest(errors.WithMessage(err, name))
		}
	}
	return newEventReader(s.chain, next, filter), nil
}

func (s *Subscriptions) handleTransferReader(req *http.Request) (msgReader, error) {
	query := req.URL.Query()
	next, err := s.parsePosition(query.Get("pos"))
	if err != nil {
		return nil, err
	}
	filter := &TransferFilter{}
	if filter.TxOrigin, err = parseAddress(query.Get("txOrigin")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "txOrigin"))
	}
	if filter.Sender, err = parseAddress(query.Get("sender")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "sender"))
	}
	if filter.Recipient, err = parseAddress(query.Get("recipient")); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "recipient"))
	}
	return newTransferReader(s.chain, next, filter), nil
}

func (s *Subscriptions) handleSubject(w http.ResponseWriter, req *http.Request) error {
	var (
		reader msgReader
		err    error
	)
	switch subject := mux.Vars(req)["subject"]; subject {
	case "block":
		reader, err = s.handleBlockReader(req)
	case "event":
		reader, err = s.handleEventReader(req)
	case "transfer":
		reader, err = s.handleTransferReader(req)
	default:
		return utils.NotFound(errors.New("not found"))
	}
	if err != nil {
		return err
	}

	if !s.track() {
		return utils.HTTPError(errors.New("shutting down"), http.StatusServiceUnavailable)
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	// the upgrader already responded, and the conn may be hijacked
	if err != nil {
		log.Debug("upgrade to websocket", "err", err)
		return nil
	}
	defer conn.Close()

	if err := s.pipe(conn, reader); err != nil {
		log.Debug("subscription closed", "subject", mux.Vars(req)["subject"], "err", err)
	}
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, reader msgReader) error {
	wake := s.addWaiter()
	defer s.removeWaiter(wake)

	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	// the read loop only drives control frames and notices the client leaving
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		msgs, hasMore, err := reader.Read()
		if err != nil {
			return err
		}
		for _, msg := range msgs {
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
		}
		if hasMore {
			continue
		}
		select {
		case <-wake:
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeTimeout))
			return nil
		}
	}
}

// track registers a connection unless Close was called.
func (s *Subscriptions) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.wg.Add(1)
	return true
}

// Close disconnects every client and waits for the pipes to stop.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{subject}").Methods("GET").HandlerFunc(utils.WrapHandlerFunc(s.handleSubject))
}
