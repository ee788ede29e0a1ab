package network

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024 * 1024 // 1MB for portfolio snapshots
	sendBufferSize = 64
	dialTimeout    = 10 * time.Second
)

var ErrTransportClosed = errors.New("transport closed")

// -----------------------------------------------------------------------------
// WSDialer
// -----------------------------------------------------------------------------

// WSDialer opens gorilla websocket transports. Open returns immediately; the
// handshake runs on its own goroutine and reports through the events.
type WSDialer struct {
	Dialer *websocket.Dialer
	Logger *logger.Logger
}

func NewWSDialer(log *logger.Logger) *WSDialer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &WSDialer{
		Dialer: &websocket.Dialer{
			Proxy:            websocket.DefaultDialer.Proxy,
			HandshakeTimeout: dialTimeout,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

func (d *WSDialer) Open(url string, events interfaces.ITransportEvents) interfaces.ITransport {
	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		url:    url,
		events: events,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		cancel: cancel,
		Logger: d.Logger,
	}
	go t.run(ctx, d.Dialer)
	return t
}

// -----------------------------------------------------------------------------
// wsTransport
// -----------------------------------------------------------------------------

type wsTransport struct {
	url    string
	events interfaces.ITransportEvents
	send   chan []byte
	done   chan struct{}
	cancel context.CancelFunc
	Logger *logger.Logger

	mu     sync.Mutex
	closed bool

	closeOnce  sync.Once
	finishOnce sync.Once
}

// -----------------------------------------------------------------------------

func (t *wsTransport) run(ctx context.Context, dialer *websocket.Dialer) {
	conn, _, err := dialer.DialContext(ctx, t.url, nil)
	if err != nil {
		t.finish(&helpers.TransportError{DashboardError: helpers.DashboardError{
			Message: "dial " + t.url,
			Cause:   err,
		}})
		return
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		conn.Close()
		t.finish(nil)
		return
	}
	t.mu.Unlock()

	t.events.OnOpen()

	go t.writePump(conn)
	t.readPump(conn)
}

// -----------------------------------------------------------------------------
// readPump - delivers inbound frames and watches the pong deadline
// -----------------------------------------------------------------------------

func (t *wsTransport) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.Logger.Info("WebSocket error: %v", err)
			}
			t.shutdown()
			t.finish(&helpers.TransportError{DashboardError: helpers.DashboardError{
				Message: "read " + t.url,
				Cause:   err,
			}})
			return
		}
		t.events.OnMessage(message)
	}
}

// -----------------------------------------------------------------------------
// writePump - sends queued frames and keeps the connection alive
// -----------------------------------------------------------------------------

func (t *wsTransport) writePump(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message := <-t.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				t.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-t.done:
			t.mu.Lock()
			local := t.closed
			t.mu.Unlock()
			if local {
				_ = conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait),
				)
			}
			return
		}
	}
}

// -----------------------------------------------------------------------------

func (t *wsTransport) Send(data []byte) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}

	select {
	case t.send <- data:
		return nil
	default:
		return errors.Errorf("send buffer full (%d frames)", sendBufferSize)
	}
}

// -----------------------------------------------------------------------------

// Close tears the connection down without waiting on the peer: the write
// pump sends the close frame and closes the socket. The read pump then
// reports a nil OnClose.
func (t *wsTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	t.shutdown()
	return nil
}

// -----------------------------------------------------------------------------

func (t *wsTransport) shutdown() {
	t.closeOnce.Do(func() { close(t.done) })
}

// -----------------------------------------------------------------------------

// finish reports the end of the transport exactly once. A locally requested
// close is reported as clean.
func (t *wsTransport) finish(err error) {
	t.finishOnce.Do(func() {
		t.mu.Lock()
		if t.closed {
			err = nil
		}
		t.mu.Unlock()
		t.events.OnClose(err)
	})
}
