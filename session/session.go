package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
)

const writeWait = 10 * time.Second

var ErrNotOpen = errors.New("session is not open")

type State int

const (
	StateConnecting State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type EventHandler func(domain.Message)
type StateHandler func(State)

// Session owns one relay connection for the lifetime of a surface. Once
// closed it stays closed; there is no reconnect.
type Session struct {
	url    string
	dialer *websocket.Dialer

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	state   State
	onEvent []EventHandler
	onState []StateHandler
	done    chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func New(endpoint string) *Session {
	return &Session{
		url:    endpoint,
		dialer: websocket.DefaultDialer,
		state:  StateConnecting,
		done:   make(chan struct{}),
	}
}

// OnEvent registers a handler for every well-formed inbound message.
// Handlers run on the session's read goroutine, one at a time.
func (s *Session) OnEvent(h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvent = append(s.onEvent, h)
}

func (s *Session) OnState(h StateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = append(s.onState, h)
}

// Connect dials the relay and starts reading. A failed dial leaves the
// session closed and reports the error; nothing is retried.
func (s *Session) Connect(ctx context.Context) error {
	s.emitState(StateConnecting)

	conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		s.setState(StateClosed)
		close(s.done)
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	s.setState(StateOpen)
	go s.readLoop(conn)
	return nil
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateOpen
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session reaches StateClosed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Send(msg domain.Message) error {
	s.mu.Lock()
	conn, state := s.conn, s.state
	s.mu.Unlock()
	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// Close sends a close frame and waits for the relay to finish the
// handshake. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		s.writeMu.Unlock()

		select {
		case <-s.done:
			// readLoop already closed the socket.
			return
		case <-time.After(time.Second):
		}
		if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			s.closeErr = err
		}
	})
	return s.closeErr
}

func (s *Session) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		s.setState(StateClosed)
		close(s.done)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Warn("relay connection lost", "error", err)
			}
			return
		}

		msg, err := domain.Decode(data)
		if err != nil {
			slog.Warn("invalid message from server", "data", string(data), "error", err)
			continue
		}

		s.mu.Lock()
		handlers := append([]EventHandler(nil), s.onEvent...)
		s.mu.Unlock()
		for _, h := range handlers {
			h(msg)
		}
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	if s.state == state || s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()
	s.emitState(state)
}

func (s *Session) emitState(state State) {
	s.mu.Lock()
	handlers := append([]StateHandler(nil), s.onState...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(state)
	}
}

// SelectEndpoint picks the plain local relay for loopback hosts and the
// encrypted remote relay for everything else.
func SelectEndpoint(host, localURL, remoteURL string) string {
	if IsLocalHost(host) {
		return localURL
	}
	return remoteURL
}

// IsLocalHost accepts a bare host, host:port or a URL.
func IsLocalHost(host string) bool {
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Hostname()
	} else if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	switch strings.Trim(host, "[]") {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
