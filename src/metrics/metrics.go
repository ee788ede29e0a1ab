package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "market_dashboard"

// -----------------------------------------------------------------------------

// Metrics groups the counters of the real-time core. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	framesReceived *prometheus.CounterVec
	framesDropped  *prometheus.CounterVec
	reconnects     prometheus.Counter
	commands       *prometheus.CounterVec
	connected      prometheus.Gauge
	notifications  *prometheus.CounterVec
	journalDropped prometheus.Counter
}

// -----------------------------------------------------------------------------

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		framesReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_received_total",
			Help:      "Inbound frames dispatched to the store, by frame type.",
		}, []string{"type"}),
		framesDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "frames_dropped_total",
			Help:      "Inbound frames dropped, by reason.",
		}, []string{"reason"}),
		reconnects: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "reconnect_attempts_total",
			Help:      "Reconnection attempts scheduled.",
		}),
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Outbound commands, by type and result.",
		}, []string{"type", "result"}),
		connected: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "connected",
			Help:      "1 while the real-time session is connected.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Notifications shown, by severity.",
		}, []string{"severity"}),
		journalDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "journal",
			Name:      "dropped_total",
			Help:      "Journal records dropped because the write queue was full.",
		}),
	}
}

// -----------------------------------------------------------------------------

func (m *Metrics) FrameReceived(frameType string) {
	if m == nil {
		return
	}
	m.framesReceived.WithLabelValues(frameType).Inc()
}

func (m *Metrics) FrameDropped(reason string) {
	if m == nil {
		return
	}
	m.framesDropped.WithLabelValues(reason).Inc()
}

func (m *Metrics) ReconnectScheduled() {
	if m == nil {
		return
	}
	m.reconnects.Inc()
}

func (m *Metrics) Command(frameType, result string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(frameType, result).Inc()
}

func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
	} else {
		m.connected.Set(0)
	}
}

func (m *Metrics) NotificationShown(severity string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(severity).Inc()
}

func (m *Metrics) JournalDropped() {
	if m == nil {
		return
	}
	m.journalDropped.Inc()
}
