package actions

import (
	"context"
	"fmt"
	"strings"

	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/store"
)

// -----------------------------------------------------------------------------
// Actions
// -----------------------------------------------------------------------------

// Actions turns user intents into request/response calls. Confirmed results
// are written to the store and acknowledged with an info notice; failures
// raise an error notice and are returned to the caller.
type Actions struct {
	api      interfaces.ITradingAPI
	store    *store.Store
	notifier interfaces.INotifier
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewActions(api interfaces.ITradingAPI, st *store.Store, notifier interfaces.INotifier, log *logger.Logger) *Actions {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Actions{api: api, store: st, notifier: notifier, Logger: log}
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

func (a *Actions) PlaceOrder(ctx context.Context, req models.MOrderRequest) (*models.MOrder, error) {
	order, err := a.api.PlaceOrder(ctx, req)
	if err != nil {
		return nil, a.fail("Failed to place order", err)
	}

	a.store.UpsertOrder(*order)
	a.notifier.ShowInfo(fmt.Sprintf("Order placed: %s %g %s",
		strings.ToUpper(string(order.Side)), order.Quantity, order.Symbol))
	return order, nil
}

// -----------------------------------------------------------------------------

// CancelOrder only acknowledges the request; the cancelled state itself
// arrives as an order update on the session.
func (a *Actions) CancelOrder(ctx context.Context, orderID string) error {
	if err := a.api.CancelOrder(ctx, orderID); err != nil {
		return a.fail("Failed to cancel order", err)
	}
	a.notifier.ShowInfo(fmt.Sprintf("Cancellation requested for order %s", orderID))
	return nil
}

// -----------------------------------------------------------------------------

func (a *Actions) LoadOrders(ctx context.Context) ([]models.MOrder, error) {
	orders, err := a.api.GetOrders(ctx)
	if err != nil {
		return nil, a.fail("Failed to load orders", err)
	}
	a.store.ReplaceOrders(orders)
	return orders, nil
}

// -----------------------------------------------------------------------------
// Portfolio / account
// -----------------------------------------------------------------------------

func (a *Actions) LoadPortfolio(ctx context.Context) (*models.MPortfolio, error) {
	portfolio, err := a.api.GetPortfolio(ctx)
	if err != nil {
		return nil, a.fail("Failed to load portfolio", err)
	}
	a.store.ReplacePortfolio(*portfolio)
	return portfolio, nil
}

// -----------------------------------------------------------------------------

func (a *Actions) LoadAccountInfo(ctx context.Context) (*models.MAccountInfo, error) {
	info, err := a.api.GetAccountInfo(ctx)
	if err != nil {
		return nil, a.fail("Failed to load account info", err)
	}
	return info, nil
}

// -----------------------------------------------------------------------------
// Market data / backtest
// -----------------------------------------------------------------------------

func (a *Actions) LoadMarketData(ctx context.Context, symbol, timeframe string) ([]models.MCandle, error) {
	candles, err := a.api.GetMarketData(ctx, symbol, timeframe)
	if err != nil {
		return nil, a.fail("Failed to load market data", err)
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

func (a *Actions) RunBacktest(ctx context.Context, req models.MBacktestRequest) (*models.MBacktestResult, error) {
	result, err := a.api.RunBacktest(ctx, req)
	if err != nil {
		return nil, a.fail("Backtest failed", err)
	}
	a.notifier.ShowInfo(fmt.Sprintf("Backtest completed: %.2f%% total return", result.TotalReturn))
	return result, nil
}

// -----------------------------------------------------------------------------

func (a *Actions) LoadSupportedTickers(ctx context.Context) ([]string, error) {
	tickers, err := a.api.GetSupportedTickers(ctx)
	if err != nil {
		return nil, a.fail("Failed to load tickers", err)
	}
	return tickers, nil
}

// -----------------------------------------------------------------------------

func (a *Actions) fail(prefix string, err error) error {
	a.Logger.Warning("%s: %v", prefix, err)
	a.notifier.ShowError(fmt.Sprintf("%s: %v", prefix, err))
	return err
}
