package interfaces

import "market-dashboard/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for journal storage operations.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTicks inserts a batch of market ticks.
	SaveTicks(ticks []models.MMarketTick) error

	// -----------------------------------------------------------------------------
	// SaveOrders upserts order states by id.
	SaveOrders(orders []models.MOrder) error

	// -----------------------------------------------------------------------------
	// SavePortfolioSnapshot appends one portfolio snapshot.
	SavePortfolioSnapshot(portfolio models.MPortfolio, receivedAt int64) error

	// -----------------------------------------------------------------------------
	// CleanupOldData removes ticks and snapshots older than the retention window.
	CleanupOldData(retentionDays int) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
