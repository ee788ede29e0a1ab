package session

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/metrics"
	"market-dashboard/src/models"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	DefaultReconnectBase        = 1000 * time.Millisecond
	DefaultMaxReconnectAttempts = 5
	DefaultMaxReconnectDelay    = 30 * time.Second
)

// -----------------------------------------------------------------------------

// Options configures one session. Zero values fall back to the defaults.
type Options struct {
	URL         string
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func (o Options) withDefaults() Options {
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultReconnectBase
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxReconnectDelay
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxReconnectAttempts
	}
	return o
}

// OptionsFromConfig maps the session section of the YAML config.
func OptionsFromConfig(cfg models.MSessionConfig) Options {
	return Options{
		URL:         cfg.URL,
		BaseDelay:   time.Duration(cfg.ReconnectBaseMs) * time.Millisecond,
		MaxDelay:    time.Duration(cfg.ReconnectMaxDelayMs) * time.Millisecond,
		MaxAttempts: cfg.ReconnectMaxAttempts,
	}.withDefaults()
}

// -----------------------------------------------------------------------------
// Manager
// -----------------------------------------------------------------------------

// Manager owns one logical real-time connection: its state machine,
// reconnection policy, inbound dispatch and outbound commands.
//
// Every field below the first group is touched only from tasks running on
// the event loop. Transport events and timers carry the generation / token
// that was current when they were created and are ignored once it changes.
type Manager struct {
	opts      Options
	loop      *utils.EventLoop
	dialer    interfaces.ITransportDialer
	scheduler interfaces.IScheduler
	writer    interfaces.IStateWriter
	metrics   *metrics.Metrics
	Logger    *logger.Logger

	phase         models.SessionPhase
	transport     interfaces.ITransport
	generation    uint64
	attempts      int
	backoff       *helpers.Backoff
	timer         interfaces.ITimer
	timerToken    uint64
	autoReconnect bool

	stateMu      sync.RWMutex
	state        models.MConnectionState
	nextObserver uint64
	observers    []stateObserver
}

type stateObserver struct {
	id uint64
	fn func(models.MConnectionState)
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewManager(
	opts Options,
	loop *utils.EventLoop,
	dialer interfaces.ITransportDialer,
	scheduler interfaces.IScheduler,
	writer interfaces.IStateWriter,
	m *metrics.Metrics,
	log *logger.Logger,
) *Manager {
	opts = opts.withDefaults()
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Manager{
		opts:      opts,
		loop:      loop,
		dialer:    dialer,
		scheduler: scheduler,
		writer:    writer,
		metrics:   m,
		Logger:    log,
		phase:     models.PhaseDisconnected,
		backoff:   helpers.NewBackoff(opts.BaseDelay, opts.MaxDelay),
		state:     models.MConnectionState{Phase: models.PhaseDisconnected},
	}
}

// -----------------------------------------------------------------------------
// Public API
// -----------------------------------------------------------------------------

// Connect starts a connection attempt. It is a no-op while connecting or
// connected; while a reconnection is pending it attempts immediately.
func (m *Manager) Connect() {
	m.loop.Post(m.connect)
}

// -----------------------------------------------------------------------------

// Disconnect closes the transport, cancels any pending reconnection and
// disables automatic reconnection until the next Connect.
func (m *Manager) Disconnect() {
	m.loop.Post(m.disconnect)
}

// -----------------------------------------------------------------------------

func (m *Manager) Subscribe(symbols []string) {
	symbols = append([]string(nil), symbols...)
	m.loop.Post(func() { m.sendCommand(models.FrameSubscribe, symbols) })
}

// -----------------------------------------------------------------------------

func (m *Manager) Unsubscribe(symbols []string) {
	symbols = append([]string(nil), symbols...)
	m.loop.Post(func() { m.sendCommand(models.FrameUnsubscribe, symbols) })
}

// -----------------------------------------------------------------------------

// State returns a snapshot of the connection state.
func (m *Manager) State() models.MConnectionState {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// -----------------------------------------------------------------------------

// Observe registers fn to be called synchronously on every phase change.
func (m *Manager) Observe(fn func(models.MConnectionState)) func() {
	m.stateMu.Lock()
	m.nextObserver++
	id := m.nextObserver
	m.observers = append(m.observers, stateObserver{id: id, fn: fn})
	m.stateMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.stateMu.Lock()
			defer m.stateMu.Unlock()
			for i, o := range m.observers {
				if o.id == id {
					m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// -----------------------------------------------------------------------------
// State machine (event loop only)
// -----------------------------------------------------------------------------

func (m *Manager) connect() {
	switch m.phase {
	case models.PhaseConnecting, models.PhaseConnected:
		m.Logger.Debug("Connect ignored, session is %s", m.phase)
		return
	case models.PhaseReconnecting:
		m.cancelTimer()
	case models.PhaseDisconnected:
		// A manual connect starts a fresh retry budget.
		m.attempts = 0
		m.backoff.Reset()
	}

	m.autoReconnect = true
	m.openTransport()
}

// -----------------------------------------------------------------------------

func (m *Manager) openTransport() {
	m.generation++
	gen := m.generation

	m.Logger.Info("Connecting to %s (attempt %d/%d)", m.opts.URL, m.attempts, m.opts.MaxAttempts)
	m.setPhase(models.PhaseConnecting)
	m.transport = m.dialer.Open(m.opts.URL, &transportEvents{manager: m, gen: gen})
}

// -----------------------------------------------------------------------------

func (m *Manager) disconnect() {
	m.autoReconnect = false
	m.cancelTimer()
	m.attempts = 0
	m.backoff.Reset()

	if m.phase == models.PhaseDisconnected && m.transport == nil {
		return
	}

	// Anything the old transport still reports is stale from here on.
	m.generation++
	if m.transport != nil {
		t := m.transport
		m.transport = nil
		if err := t.Close(); err != nil {
			m.Logger.Warning("Error closing transport: %v", err)
		}
	}

	m.Logger.Info("Disconnected by request")
	m.setPhase(models.PhaseDisconnected)
}

// -----------------------------------------------------------------------------

func (m *Manager) handleOpen(gen uint64) {
	if gen != m.generation || m.phase != models.PhaseConnecting {
		m.Logger.Debug("Ignoring open event from stale transport")
		return
	}

	m.attempts = 0
	m.backoff.Reset()
	m.Logger.Info("Connected to %s", m.opts.URL)
	m.setPhase(models.PhaseConnected)
}

// -----------------------------------------------------------------------------

func (m *Manager) handleClose(gen uint64, err error) {
	if gen != m.generation {
		return
	}
	if m.phase != models.PhaseConnecting && m.phase != models.PhaseConnected {
		return
	}

	m.transport = nil
	if err != nil {
		m.Logger.Warning("Connection lost: %v", err)
	} else {
		m.Logger.Info("Connection closed")
	}
	m.setPhase(models.PhaseDisconnected)
	m.scheduleReconnect()
}

// -----------------------------------------------------------------------------

func (m *Manager) scheduleReconnect() {
	if !m.autoReconnect {
		return
	}
	if m.attempts >= m.opts.MaxAttempts {
		m.Logger.Warning("Giving up after %d reconnection attempts", m.attempts)
		return
	}

	m.attempts++
	delay := m.backoff.Next()
	m.timerToken++
	token := m.timerToken
	m.timer = m.scheduler.AfterFunc(delay, func() { m.fireReconnect(token) })
	m.metrics.ReconnectScheduled()

	m.Logger.Info("Reconnecting in %v (attempt %d/%d)", delay, m.attempts, m.opts.MaxAttempts)
	m.setPhase(models.PhaseReconnecting)
}

// -----------------------------------------------------------------------------

func (m *Manager) fireReconnect(token uint64) {
	if token != m.timerToken || m.phase != models.PhaseReconnecting {
		return
	}
	m.timer = nil
	m.openTransport()
}

// -----------------------------------------------------------------------------

func (m *Manager) cancelTimer() {
	m.timerToken++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// -----------------------------------------------------------------------------
// Dispatch
// -----------------------------------------------------------------------------

func (m *Manager) handleMessage(gen uint64, data []byte) {
	if gen != m.generation || m.phase != models.PhaseConnected {
		m.metrics.FrameDropped("stale")
		return
	}

	frame, err := DecodeInbound(data)
	if err != nil {
		if errors.Is(err, ErrUnknownFrameType) {
			m.Logger.Warning("Ignoring frame: %v", err)
			m.metrics.FrameDropped("unknown_type")
		} else {
			m.Logger.Warning("Dropping malformed frame: %v", err)
			m.metrics.FrameDropped("malformed")
		}
		return
	}

	m.stateMu.Lock()
	m.state.LastMessage = frame
	m.stateMu.Unlock()

	switch f := frame.(type) {
	case models.MMarketDataFrame:
		m.writer.ApplyTick(f.Symbol, f.Data)
	case models.MPortfolioUpdateFrame:
		m.writer.ReplacePortfolio(f.Data)
	case models.MOrderUpdateFrame:
		m.writer.UpsertOrder(f.Data)
	}
	m.metrics.FrameReceived(string(frame.FrameType()))
}

// -----------------------------------------------------------------------------

func (m *Manager) sendCommand(frameType models.FrameType, symbols []string) {
	if m.phase != models.PhaseConnected || m.transport == nil {
		m.Logger.Debug("%s skipped, session is %s", frameType, m.phase)
		m.metrics.Command(string(frameType), "skipped")
		return
	}

	payload, err := EncodeCommand(frameType, symbols)
	if err != nil {
		m.Logger.Error("Failed to encode %s: %v", frameType, err)
		return
	}
	if err := m.transport.Send(payload); err != nil {
		m.Logger.Warning("Failed to send %s: %v", frameType, err)
		m.metrics.Command(string(frameType), "failed")
		return
	}
	m.metrics.Command(string(frameType), "sent")
}

// -----------------------------------------------------------------------------

// setPhase records the new phase and notifies observers if it changed.
func (m *Manager) setPhase(phase models.SessionPhase) {
	m.phase = phase

	m.stateMu.Lock()
	changed := m.state.Phase != phase
	m.state.Phase = phase
	m.state.Connected = phase == models.PhaseConnected
	m.state.Attempts = m.attempts
	snapshot := m.state
	observers := make([]stateObserver, len(m.observers))
	copy(observers, m.observers)
	m.stateMu.Unlock()

	if !changed {
		return
	}
	m.metrics.SetConnected(snapshot.Connected)
	for _, o := range observers {
		o.fn(snapshot)
	}
}

// -----------------------------------------------------------------------------
// Transport events
// -----------------------------------------------------------------------------

// transportEvents binds the callbacks of one transport to the generation it
// was opened under, and moves them onto the event loop.
type transportEvents struct {
	manager *Manager
	gen     uint64
}

func (e *transportEvents) OnOpen() {
	e.manager.loop.Post(func() { e.manager.handleOpen(e.gen) })
}

func (e *transportEvents) OnMessage(data []byte) {
	e.manager.loop.Post(func() { e.manager.handleMessage(e.gen, data) })
}

func (e *transportEvents) OnClose(err error) {
	e.manager.loop.Post(func() { e.manager.handleClose(e.gen, err) })
}
