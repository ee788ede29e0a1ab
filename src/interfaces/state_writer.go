package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// IStateWriter is the write side of the shared state store, as used by the
// session manager when dispatching inbound frames.
// -----------------------------------------------------------------------------

type IStateWriter interface {
	ApplyTick(symbol string, tick models.MMarketTick)

	// -----------------------------------------------------------------------------
	ReplacePortfolio(portfolio models.MPortfolio)

	// -----------------------------------------------------------------------------
	UpsertOrder(order models.MOrder)
}
