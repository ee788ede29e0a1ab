package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.FrameReceived("MARKET_DATA")
	m.FrameReceived("MARKET_DATA")
	m.FrameDropped("malformed")
	m.ReconnectScheduled()
	m.Command("SUBSCRIBE", "skipped")
	m.NotificationShown("error")
	m.JournalDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.framesReceived.WithLabelValues("MARKET_DATA")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.framesDropped.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconnects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("SUBSCRIBE", "skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.notifications.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.journalDropped))
}

func TestMetrics_ConnectedGauge(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.SetConnected(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connected))
	m.SetConnected(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.connected))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.FrameReceived("MARKET_DATA")
		m.FrameDropped("stale")
		m.ReconnectScheduled()
		m.Command("SUBSCRIBE", "sent")
		m.SetConnected(true)
		m.NotificationShown("info")
		m.JournalDropped()
	})
}
