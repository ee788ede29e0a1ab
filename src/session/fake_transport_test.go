package session

import (
	"errors"

	"market-dashboard/src/interfaces"
)

// -----------------------------------------------------------------------------
// Fake transport used instead of a real websocket
// -----------------------------------------------------------------------------

type fakeTransport struct {
	url     string
	events  interfaces.ITransportEvents
	sent    []string
	closed  bool
	sendErr error
}

func (t *fakeTransport) Send(data []byte) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, string(data))
	return nil
}

func (t *fakeTransport) Close() error {
	t.closed = true
	return nil
}

// -----------------------------------------------------------------------------

// open, message and fail play the part of the network.
func (t *fakeTransport) open() {
	t.events.OnOpen()
}

func (t *fakeTransport) message(frame string) {
	t.events.OnMessage([]byte(frame))
}

func (t *fakeTransport) fail() {
	t.events.OnClose(errors.New("connection reset by peer"))
}

// -----------------------------------------------------------------------------

type fakeDialer struct {
	transports []*fakeTransport
}

func (d *fakeDialer) Open(url string, events interfaces.ITransportEvents) interfaces.ITransport {
	t := &fakeTransport{url: url, events: events}
	d.transports = append(d.transports, t)
	return t
}

func (d *fakeDialer) last() *fakeTransport {
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}
