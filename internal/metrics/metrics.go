package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "realtime"

// Metrics holds the collectors for the realtime connection.
//
// A nil *Metrics is valid and records nothing, so components can take it
// as an optional dependency.
type Metrics struct {
	HandlesCreated   prometheus.Counter
	Connected        prometheus.Gauge
	Reconnects       prometheus.Counter
	EventsReceived   *prometheus.CounterVec
	EventsSent       *prometheus.CounterVec
	EventsDropped    prometheus.Counter
	AddressConflicts prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		HandlesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handles_created_total",
			Help:      "Total number of connection handles created",
		}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while the realtime connection is established",
		}),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconnects_total",
			Help:      "Total number of reconnect attempts",
		}),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Total number of events received by name",
		}, []string{"event"}),
		EventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_sent_total",
			Help:      "Total number of events sent by name",
		}, []string{"event"}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of inbound events dropped because the buffer was full",
		}),
		AddressConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "address_conflicts_total",
			Help:      "Total number of registry calls whose address differed from the bound one",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.HandlesCreated,
		m.Connected,
		m.Reconnects,
		m.EventsReceived,
		m.EventsSent,
		m.EventsDropped,
		m.AddressConflicts,
	)

	return m
}

// Handler returns an HTTP handler exposing the collectors.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// HandleCreated counts a new connection handle. Recorders are no-ops on a nil *Metrics.
func (m *Metrics) HandleCreated() {
	if m == nil {
		return
	}
	m.HandlesCreated.Inc()
}

// SetConnected sets the connected gauge to 1 or 0.
func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}

// Reconnect counts a reconnection attempt.
func (m *Metrics) Reconnect() {
	if m == nil {
		return
	}
	m.Reconnects.Inc()
}

// EventReceived counts an inbound event by name.
func (m *Metrics) EventReceived(event string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(event).Inc()
}

// EventSent counts an outbound event by name.
func (m *Metrics) EventSent(event string) {
	if m == nil {
		return
	}
	m.EventsSent.WithLabelValues(event).Inc()
}

// EventDropped counts an inbound event dropped on a full buffer.
func (m *Metrics) EventDropped() {
	if m == nil {
		return
	}
	m.EventsDropped.Inc()
}

// AddressConflict counts a lookup whose address differs from the bound one.
func (m *Metrics) AddressConflict() {
	if m == nil {
		return
	}
	m.AddressConflicts.Inc()
}
