package protocol

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
)

type mockConn struct {
	id   string
	sent [][]byte
	mu   sync.Mutex
}

func (m *mockConn) ID() string { return m.id }

func (m *mockConn) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, data)
	return nil
}

func (m *mockConn) Close() error { return nil }

func (m *mockConn) getSent() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

type mockBroadcaster struct {
	broadcasts []broadcastCall
	mu         sync.Mutex
}

type broadcastCall struct {
	senderID string
	data     []byte
}

func (m *mockBroadcaster) Register(conn domain.Connection) error { return nil }
func (m *mockBroadcaster) Unregister(conn domain.Connection)     {}
func (m *mockBroadcaster) Count() int                            { return 0 }

func (m *mockBroadcaster) Broadcast(sender domain.Connection, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcasts = append(m.broadcasts, broadcastCall{senderID: sender.ID(), data: data})
}

func (m *mockBroadcaster) getBroadcasts() []broadcastCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.broadcasts
}

func TestHandler_RelaysNote(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	m := metrics.NewRelay()
	handler := NewHandler(broadcaster, m)
	conn := &mockConn{id: "client1"}

	handler.Handle(conn, []byte(`{"type":"note","note":"C","extra":true}`))

	broadcasts := broadcaster.getBroadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, "client1", broadcasts[0].senderID)
	assert.JSONEq(t, `{"type":"note","note":"C"}`, string(broadcasts[0].data))

	assert.Empty(t, conn.getSent(), "no echo to sender")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NotesRelayed))
}

func TestHandler_Dropped(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{name: "invalid json", input: "not json", reason: metrics.ReasonMalformed},
		{name: "missing type", input: `{"note":"C"}`, reason: metrics.ReasonMalformed},
		{name: "note without note", input: `{"type":"note"}`, reason: metrics.ReasonInvalid},
		{name: "unknown type", input: `{"type":"chord","notes":["C","E"]}`, reason: metrics.ReasonUnknownType},
		{name: "client player count", input: `{"type":"playerCount","count":9}`, reason: metrics.ReasonServerOwned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broadcaster := &mockBroadcaster{}
			m := metrics.NewRelay()
			handler := NewHandler(broadcaster, m)
			conn := &mockConn{id: "client1"}

			handler.Handle(conn, []byte(tt.input))

			assert.Empty(t, conn.getSent())
			assert.Empty(t, broadcaster.getBroadcasts())
			assert.Equal(t, float64(1), testutil.ToFloat64(m.Dropped.WithLabelValues(tt.reason)))
		})
	}
}

func TestHandler_NilMetrics(t *testing.T) {
	broadcaster := &mockBroadcaster{}
	handler := NewHandler(broadcaster, nil)
	conn := &mockConn{id: "client1"}

	assert.NotPanics(t, func() {
		handler.Handle(conn, []byte("{"))
		handler.Handle(conn, []byte(`{"type":"note","note":"A"}`))
	})

	require.Len(t, broadcaster.getBroadcasts(), 1)
	var msg domain.Message
	require.NoError(t, json.Unmarshal(broadcaster.getBroadcasts()[0].data, &msg))
	assert.Equal(t, "A", msg.Note)
}
