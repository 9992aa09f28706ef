package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RoomsActive counts rooms with at least one member.
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_rooms_active",
		Help: "Number of rooms with at least one member.",
	})

	// ClientsActive counts connections currently attached to a room.
	ClientsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_clients_active",
		Help: "Number of connections currently joined to a room.",
	})

	// FramesRelayed counts inbound frames fanned out to a room.
	FramesRelayed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_frames_relayed_total",
		Help: "Inbound frames broadcast to room members.",
	})

	// FramesDropped counts frames discarded by the dispatcher (unparseable,
	// sent before join, or not relay-eligible).
	FramesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_frames_dropped_total",
		Help: "Inbound frames discarded without delivery.",
	})

	// SendFailures counts per-recipient delivery failures during broadcast.
	SendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_send_failures_total",
		Help: "Failed sends to individual recipients.",
	})
)

// Handler exposes Prometheus metrics at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
