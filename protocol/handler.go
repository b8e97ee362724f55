package protocol

import (
	"log/slog"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
)

type handlerFunc func(conn domain.Connection, msg domain.Message)

// Handler dispatches inbound frames by message type. Nothing it receives
// ends a connection: bad input is logged and dropped.
type Handler struct {
	broadcaster domain.Broadcaster
	metrics     *metrics.Relay
	routes      map[string]handlerFunc
}

// NewHandler builds the relay dispatcher. m may be nil.
func NewHandler(b domain.Broadcaster, m *metrics.Relay) *Handler {
	h := &Handler{broadcaster: b, metrics: m}
	h.routes = map[string]handlerFunc{
		domain.TypeNote:        h.relayNote,
		domain.TypePlayerCount: h.ignoreServerOwned,
	}
	return h
}

func (h *Handler) Handle(conn domain.Connection, data []byte) {
	msg, err := domain.Decode(data)
	if err != nil {
		slog.Warn("invalid message", "clientId", conn.ID(), "error", err)
		h.drop(metrics.ReasonMalformed)
		return
	}

	route, ok := h.routes[msg.Type]
	if !ok {
		slog.Debug("unknown message type", "clientId", conn.ID(), "type", msg.Type)
		h.drop(metrics.ReasonUnknownType)
		return
	}
	route(conn, msg)
}

func (h *Handler) relayNote(conn domain.Connection, msg domain.Message) {
	if err := msg.Validate(); err != nil {
		slog.Warn("invalid note", "clientId", conn.ID(), "error", err)
		h.drop(metrics.ReasonInvalid)
		return
	}

	// Re-encode so peers only ever see the canonical two-field shape.
	out, err := domain.NewNote(msg.Note).Encode()
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ID(), "error", err)
		return
	}

	if h.metrics != nil {
		h.metrics.NotesRelayed.Inc()
	}
	slog.Debug("note", "clientId", conn.ID(), "note", msg.Note)
	h.broadcaster.Broadcast(conn, out)
}

// The count is owned by the relay; a client claiming one is ignored.
func (h *Handler) ignoreServerOwned(conn domain.Connection, msg domain.Message) {
	slog.Debug("ignoring client playerCount", "clientId", conn.ID())
	h.drop(metrics.ReasonServerOwned)
}

func (h *Handler) drop(reason string) {
	if h.metrics != nil {
		h.metrics.Dropped.WithLabelValues(reason).Inc()
	}
}
