package models

// SessionPhase is the state of the session state machine.
type SessionPhase string

const (
	PhaseDisconnected SessionPhase = "disconnected"
	PhaseConnecting   SessionPhase = "connecting"
	PhaseConnected    SessionPhase = "connected"
	PhaseReconnecting SessionPhase = "reconnecting"
)

// -----------------------------------------------------------------------------

// MConnectionState is owned by the session manager. LastMessage is the last
// frame that was dispatched into state; frames of an unknown type are only
// logged and counted.
type MConnectionState struct {
	Connected   bool         `json:"connected"`
	Phase       SessionPhase `json:"phase"`
	Attempts    int          `json:"reconnectAttempts"`
	LastMessage InboundFrame `json:"lastMessage,omitempty"`
}
