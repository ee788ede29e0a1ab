package models

// -----------------------------------------------------------------------------
// Real-time channel frames (JSON text frames)
// -----------------------------------------------------------------------------

type FrameType string

const (
	FrameMarketData      FrameType = "MARKET_DATA"
	FramePortfolioUpdate FrameType = "PORTFOLIO_UPDATE"
	FrameOrderUpdate     FrameType = "ORDER_UPDATE"

	FrameSubscribe   FrameType = "SUBSCRIBE"
	FrameUnsubscribe FrameType = "UNSUBSCRIBE"
)

// InboundFrame is the closed set of server-to-client frames.
// Only the three frame types below implement it.
type InboundFrame interface {
	FrameType() FrameType
	inbound()
}

// -----------------------------------------------------------------------------

type MMarketDataFrame struct {
	Type   FrameType   `json:"type"`
	Symbol string      `json:"symbol"`
	Data   MMarketTick `json:"data"`
}

func (MMarketDataFrame) FrameType() FrameType { return FrameMarketData }
func (MMarketDataFrame) inbound() {}

// -----------------------------------------------------------------------------

type MPortfolioUpdateFrame struct {
	Type FrameType  `json:"type"`
	Data MPortfolio `json:"data"`
}

func (MPortfolioUpdateFrame) FrameType() FrameType { return FramePortfolioUpdate }
func (MPortfolioUpdateFrame) inbound() {}

// -----------------------------------------------------------------------------

type MOrderUpdateFrame struct {
	Type FrameType `json:"type"`
	Data MOrder    `json:"data"`
}

func (MOrderUpdateFrame) FrameType() FrameType { return FrameOrderUpdate }
func (MOrderUpdateFrame) inbound() {}

// -----------------------------------------------------------------------------

// MCommandFrame is the client-to-server subscribe/unsubscribe command.
type MCommandFrame struct {
	Type    FrameType `json:"type"`
	Symbols []string  `json:"symbols"`
}
