package interfaces

// -----------------------------------------------------------------------------
// ITransportEvents receives the lifecycle events of one transport.
// Implementations must tolerate calls from any goroutine.
// -----------------------------------------------------------------------------

type ITransportEvents interface {
	// OnOpen fires once the connection is established.
	OnOpen()

	// -----------------------------------------------------------------------------
	// OnMessage delivers one inbound text frame, in arrival order.
	OnMessage(data []byte)

	// -----------------------------------------------------------------------------
	// OnClose fires exactly once, whether the transport failed to open, broke,
	// or was closed locally. err is nil for a clean close.
	OnClose(err error)
}

// -----------------------------------------------------------------------------
// ITransport is one open (or opening) real-time connection.
// -----------------------------------------------------------------------------

type ITransport interface {
	// Send writes one text frame.
	Send(data []byte) error

	// -----------------------------------------------------------------------------
	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// -----------------------------------------------------------------------------
// ITransportDialer opens transports. Open must not block on the network.
// -----------------------------------------------------------------------------

type ITransportDialer interface {
	Open(url string, events ITransportEvents) ITransport
}
