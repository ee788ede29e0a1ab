package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// ISession is what views and request handlers see of the session manager.
// -----------------------------------------------------------------------------

type ISession interface {
	Connect()
	Disconnect()

	// -----------------------------------------------------------------------------
	// Subscribe and Unsubscribe are silently skipped unless connected.
	Subscribe(symbols []string)
	Unsubscribe(symbols []string)

	// -----------------------------------------------------------------------------
	State() models.MConnectionState

	// -----------------------------------------------------------------------------
	// Observe registers a connectivity observer and returns its unsubscribe handle.
	Observe(fn func(models.MConnectionState)) func()
}
