package interfaces

import "context"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing state with external views.
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast pushes one change event to every connected view.
	Broadcast(eventType string, payload interface{})

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop(ctx context.Context) error
}
