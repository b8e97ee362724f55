package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/pongsant/Assignment-4-Collaboration/domain"
	"github.com/pongsant/Assignment-4-Collaboration/metrics"
	ws "github.com/pongsant/Assignment-4-Collaboration/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Options struct {
	// StaticDir, when set, is served at / for plain HTTP requests.
	StaticDir  string
	SendBuffer int
	NoteRate   float64
	NoteBurst  int
}

// NewRouter wires the relay endpoints. The browser client dials the bare
// host, so / upgrades WebSocket requests as well as /ws.
func NewRouter(b domain.Broadcaster, h domain.MessageHandler, m *metrics.Relay, opts Options) http.Handler {
	r := mux.NewRouter()

	upgrade := wsHandler(b, h, ws.Options{
		SendBuffer: opts.SendBuffer,
		Rate:       opts.NoteRate,
		Burst:      opts.NoteBurst,
		Metrics:    m,
	})
	r.HandleFunc("/ws", upgrade)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/stats", statsHandler(b)).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	var static http.Handler = http.NotFoundHandler()
	if opts.StaticDir != "" {
		static = http.FileServer(http.Dir(opts.StaticDir))
	}
	r.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			upgrade(w, r)
			return
		}
		static.ServeHTTP(w, r)
	})

	return r
}

func wsHandler(b domain.Broadcaster, h domain.MessageHandler, opts ws.Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade error", "error", err)
			return
		}

		wsConn := ws.NewConn(uuid.New().String(), conn, b, h, opts)
		wsConn.Start()
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func statsHandler(b domain.Broadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"players": b.Count()})
	}
}
