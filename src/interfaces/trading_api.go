package interfaces

import (
	"context"

	"market-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// ITradingAPI is the request/response boundary. Every failure is returned as
// a *helpers.RequestError; nothing panics.
// -----------------------------------------------------------------------------

type ITradingAPI interface {
	PlaceOrder(ctx context.Context, req models.MOrderRequest) (*models.MOrder, error)

	// -----------------------------------------------------------------------------
	CancelOrder(ctx context.Context, orderID string) error

	// -----------------------------------------------------------------------------
	GetOrders(ctx context.Context) ([]models.MOrder, error)

	// -----------------------------------------------------------------------------
	GetPortfolio(ctx context.Context) (*models.MPortfolio, error)

	// -----------------------------------------------------------------------------
	GetMarketData(ctx context.Context, symbol, timeframe string) ([]models.MCandle, error)

	// -----------------------------------------------------------------------------
	RunBacktest(ctx context.Context, req models.MBacktestRequest) (*models.MBacktestResult, error)

	// -----------------------------------------------------------------------------
	GetAccountInfo(ctx context.Context) (*models.MAccountInfo, error)

	// -----------------------------------------------------------------------------
	GetSupportedTickers(ctx context.Context) ([]string, error)
}
