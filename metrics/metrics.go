// Package metrics exposes prometheus collectors for the connection layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "magma"

// Collector groups every connection-layer metric. A nil *Collector is valid
// and records nothing.
type Collector struct {
	accepted       prometheus.Counter
	active         prometheus.Gauge
	packets        *prometheus.CounterVec
	unknownPackets *prometheus.CounterVec
	closed         *prometheus.CounterVec
	players        prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		accepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_accepted_total",
			Help:      "Total number of accepted TCP connections",
		}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections_active",
			Help:      "Number of open connections",
		}),
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "packets_total",
			Help:      "Total number of dispatched packets by protocol state",
		}, []string{"state"}),
		unknownPackets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_packets_total",
			Help:      "Total number of skipped packets with an unrecognized ID",
		}, []string{"state"}),
		closed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_closed_total",
			Help:      "Total number of closed connections by reason",
		}, []string{"reason"}),
		players: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_online",
			Help:      "Number of players in the play state",
		}),
	}
}

func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.accepted.Inc()
	c.active.Inc()
}

func (c *Collector) ConnectionClosed(reason string) {
	if c == nil {
		return
	}
	c.active.Dec()
	c.closed.WithLabelValues(reason).Inc()
}

func (c *Collector) Packet(state string) {
	if c == nil {
		return
	}
	c.packets.WithLabelValues(state).Inc()
}

func (c *Collector) UnknownPacket(state string) {
	if c == nil {
		return
	}
	c.unknownPackets.WithLabelValues(state).Inc()
}

// PlayersOnline sets the online player gauge.
func (c *Collector) PlayersOnline(n int) {
	if c == nil {
		return
	}
	c.players.Set(float64(n))
}
