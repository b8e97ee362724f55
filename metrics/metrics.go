package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Drop reasons used as the "reason" label.
const (
	ReasonMalformed   = "malformed"
	ReasonInvalid     = "invalid"
	ReasonUnknownType = "unknown_type"
	ReasonServerOwned = "server_owned"
	ReasonRateLimited = "rate_limited"
)

// Relay holds the collectors exported by the relay. Each instance owns its
// registry so tests can build as many as they like.
type Relay struct {
	Registry *prometheus.Registry

	Players      prometheus.Gauge
	NotesRelayed prometheus.Counter
	Deliveries   prometheus.Counter
	Dropped      *prometheus.CounterVec
	Rejected     prometheus.Counter
}

func NewRelay() *Relay {
	m := &Relay{
		Registry: prometheus.NewRegistry(),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pianoduo",
			Name:      "players_connected",
			Help:      "Number of open participant connections",
		}),
		NotesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianoduo",
			Name:      "notes_relayed_total",
			Help:      "Note events accepted for rebroadcast",
		}),
		Deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianoduo",
			Name:      "deliveries_total",
			Help:      "Frames queued to peer connections",
		}),
		Dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pianoduo",
			Name:      "messages_dropped_total",
			Help:      "Inbound messages ignored by the relay",
		}, []string{"reason"}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pianoduo",
			Name:      "connections_rejected_total",
			Help:      "Connections refused because the relay was full",
		}),
	}
	m.Registry.MustRegister(m.Players, m.NotesRelayed, m.Deliveries, m.Dropped, m.Rejected)
	return m
}

func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
