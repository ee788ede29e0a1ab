package notify

import (
	"sync"
	"time"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/metrics"
	"market-dashboard/src/models"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

// DefaultTTL is how long a notice stays up when nothing replaces it.
const DefaultTTL = 5000 * time.Millisecond

// -----------------------------------------------------------------------------

// Sink receives every notice that is shown, in show order. Deliver runs on
// the event loop and must not block.
type Sink interface {
	Deliver(n models.MNotification)
}

// -----------------------------------------------------------------------------
// Notifier
// -----------------------------------------------------------------------------

// Notifier holds at most one active notification. Showing a new one replaces
// the current one and discards its pending expiry.
type Notifier struct {
	loop      *utils.EventLoop
	scheduler interfaces.IScheduler
	ttl       time.Duration
	cell      *store.Cell[*models.MNotification]
	metrics   *metrics.Metrics
	Logger    *logger.Logger

	// event loop only; active runs ahead of the cell, whose writes are queued
	version uint64
	timer   interfaces.ITimer
	active  bool

	sinksMu sync.RWMutex
	sinks   []Sink

	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewNotifier(
	loop *utils.EventLoop,
	scheduler interfaces.IScheduler,
	ttl time.Duration,
	m *metrics.Metrics,
	log *logger.Logger,
) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Notifier{
		loop:      loop,
		scheduler: scheduler,
		ttl:       ttl,
		cell:      store.NewCell[*models.MNotification](loop, nil),
		metrics:   m,
		Logger:    log,
		now:       time.Now,
	}
}

// -----------------------------------------------------------------------------

// AddSink registers an additional consumer, e.g. a chat forwarder.
func (n *Notifier) AddSink(s Sink) {
	n.sinksMu.Lock()
	defer n.sinksMu.Unlock()
	n.sinks = append(n.sinks, s)
}

// -----------------------------------------------------------------------------

func (n *Notifier) ShowError(msg string) {
	n.show(models.SeverityError, msg)
}

func (n *Notifier) ShowWarning(msg string) {
	n.show(models.SeverityWarning, msg)
}

func (n *Notifier) ShowInfo(msg string) {
	n.show(models.SeverityInfo, msg)
}

// -----------------------------------------------------------------------------

// Clear removes the active notice, if any, and cancels its expiry.
func (n *Notifier) Clear() {
	n.loop.Post(func() {
		n.version++
		n.stopTimer()
		if n.active {
			n.active = false
			n.cell.Set(nil)
		}
	})
}

// -----------------------------------------------------------------------------

// Current returns the active notice.
func (n *Notifier) Current() (models.MNotification, bool) {
	cur := n.cell.Get()
	if cur == nil {
		return models.MNotification{}, false
	}
	return *cur, true
}

// -----------------------------------------------------------------------------

// Subscribe observes every change of the active notice. A nil argument means
// the notice was cleared.
func (n *Notifier) Subscribe(fn func(*models.MNotification)) func() {
	return n.cell.Subscribe(fn)
}

// -----------------------------------------------------------------------------

func (n *Notifier) show(severity models.Severity, msg string) {
	n.loop.Post(func() {
		note := models.MNotification{
			Message:   msg,
			Severity:  severity,
			CreatedAt: n.now(),
		}

		n.version++
		version := n.version
		n.stopTimer()
		n.timer = n.scheduler.AfterFunc(n.ttl, func() { n.expire(version) })

		n.active = true
		n.cell.Set(&note)
		n.metrics.NotificationShown(string(severity))

		switch severity {
		case models.SeverityError:
			n.Logger.Error("Notification: %s", msg)
		case models.SeverityWarning:
			n.Logger.Warning("Notification: %s", msg)
		default:
			n.Logger.Info("Notification: %s", msg)
		}

		n.sinksMu.RLock()
		sinks := append([]Sink(nil), n.sinks...)
		n.sinksMu.RUnlock()
		for _, s := range sinks {
			s.Deliver(note)
		}
	})
}

// -----------------------------------------------------------------------------

func (n *Notifier) expire(version uint64) {
	if version != n.version {
		return
	}
	n.timer = nil
	n.active = false
	n.cell.Set(nil)
}

// -----------------------------------------------------------------------------

func (n *Notifier) stopTimer() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
