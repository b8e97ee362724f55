package hub

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
)

var ErrFull = errors.New("relay is full")

type Option func(*Hub)

// WithCapacity limits the number of open connections. Zero means no limit.
func WithCapacity(n int) Option {
	return func(h *Hub) { h.capacity = n }
}

func WithMetrics(m *metrics.Relay) Option {
	return func(h *Hub) { h.metrics = m }
}

// Hub owns the live connection set. Membership changes and the player count
// broadcast that follows them happen under one lock, so no participant ever
// sees a count that a concurrent join or leave has already made stale.
type Hub struct {
	clients  map[string]domain.Connection
	mu       sync.RWMutex
	capacity int
	metrics  *metrics.Relay
}

func New(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[string]domain.Connection),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hub) Register(conn domain.Connection) error {
	h.mu.Lock()
	if h.capacity > 0 && len(h.clients) >= h.capacity {
		h.mu.Unlock()
		if h.metrics != nil {
			h.metrics.Rejected.Inc()
		}
		slog.Warn("connection rejected", "clientId", conn.ID(), "capacity", h.capacity)
		return ErrFull
	}
	h.clients[conn.ID()] = conn
	count := len(h.clients)
	failed := h.announceLocked(count)
	h.mu.Unlock()

	h.setPlayers(count)
	slog.Info("client connected", "clientId", conn.ID(), "clients", count)
	h.evict(failed)
	return nil
}

func (h *Hub) Unregister(conn domain.Connection) {
	h.mu.Lock()
	if _, ok := h.clients[conn.ID()]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, conn.ID())
	count := len(h.clients)
	failed := h.announceLocked(count)
	h.mu.Unlock()

	h.setPlayers(count)
	slog.Info("client disconnected", "clientId", conn.ID(), "clients", count)
	h.evict(failed)
}

// Broadcast sends data to every member except sender. Frames from a
// connection that already left are dropped.
func (h *Hub) Broadcast(sender domain.Connection, data []byte) {
	h.mu.RLock()
	if _, ok := h.clients[sender.ID()]; !ok {
		h.mu.RUnlock()
		slog.Debug("dropping frame from departed connection", "clientId", sender.ID())
		return
	}
	var failed []domain.Connection
	delivered := 0
	for id, conn := range h.clients {
		if id == sender.ID() {
			continue
		}
		if err := conn.Send(data); err != nil {
			slog.Warn("send failed", "clientId", id, "error", err)
			failed = append(failed, conn)
			continue
		}
		delivered++
	}
	h.mu.RUnlock()

	if h.metrics != nil {
		h.metrics.Deliveries.Add(float64(delivered))
	}
	h.evict(failed)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// announceLocked sends the current count to every open connection and
// returns the ones that could not take it. Caller holds h.mu.
func (h *Hub) announceLocked(count int) []domain.Connection {
	data, err := domain.NewPlayerCount(count).Encode()
	if err != nil {
		slog.Error("marshal player count", "error", err)
		return nil
	}
	var failed []domain.Connection
	for id, conn := range h.clients {
		if err := conn.Send(data); err != nil {
			slog.Warn("player count send failed", "clientId", id, "error", err)
			failed = append(failed, conn)
		}
	}
	return failed
}

func (h *Hub) evict(conns []domain.Connection) {
	for _, c := range conns {
		go func(c domain.Connection) {
			h.Unregister(c)
			c.Close()
		}(c)
	}
}

func (h *Hub) setPlayers(count int) {
	if h.metrics != nil {
		h.metrics.Players.Set(float64(count))
	}
}
