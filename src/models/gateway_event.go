package models

// MGatewayEvent is pushed to every browser view attached to the gateway.
type MGatewayEvent struct {
	Type      string      `json:"type"`
	Symbol    string      `json:"symbol,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// MDashboardSnapshot is the full state sent when a view attaches or asks for it.
type MDashboardSnapshot struct {
	Ticks        map[string]MMarketTick `json:"ticks"`
	Portfolio    *MPortfolio            `json:"portfolio"`
	Orders       []MOrder               `json:"orders"`
	Connection   MConnectionState       `json:"connection"`
	Notification *MNotification         `json:"notification"`
}

// MViewCommand is sent by a browser view over the gateway socket.
type MViewCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}

// MSymbolsRequest is the body of the subscription endpoints.
type MSymbolsRequest struct {
	Symbols []string `json:"symbols"`
}
