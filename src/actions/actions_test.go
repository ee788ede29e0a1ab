package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/helpers"
	"market-dashboard/src/models"
	"market-dashboard/src/notify"
	"market-dashboard/src/store"
	"market-dashboard/src/utils"
)

// -----------------------------------------------------------------------------
// Fake request boundary
// -----------------------------------------------------------------------------

type fakeAPI struct {
	order     *models.MOrder
	orders    []models.MOrder
	portfolio *models.MPortfolio
	account   *models.MAccountInfo
	candles   []models.MCandle
	backtest  *models.MBacktestResult
	tickers   []string
	err       error
	cancelled []string
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, req models.MOrderRequest) (*models.MOrder, error) {
	return f.order, f.err
}

func (f *fakeAPI) CancelOrder(ctx context.Context, id string) error {
	if f.err == nil {
		f.cancelled = append(f.cancelled, id)
	}
	return f.err
}

func (f *fakeAPI) GetOrders(ctx context.Context) ([]models.MOrder, error) {
	return f.orders, f.err
}

func (f *fakeAPI) GetPortfolio(ctx context.Context) (*models.MPortfolio, error) {
	return f.portfolio, f.err
}

func (f *fakeAPI) GetMarketData(ctx context.Context, symbol, timeframe string) ([]models.MCandle, error) {
	return f.candles, f.err
}

func (f *fakeAPI) RunBacktest(ctx context.Context, req models.MBacktestRequest) (*models.MBacktestResult, error) {
	return f.backtest, f.err
}

func (f *fakeAPI) GetAccountInfo(ctx context.Context) (*models.MAccountInfo, error) {
	return f.account, f.err
}

func (f *fakeAPI) GetSupportedTickers(ctx context.Context) ([]string, error) {
	return f.tickers, f.err
}

// -----------------------------------------------------------------------------

type fixture struct {
	api      *fakeAPI
	store    *store.Store
	notifier *notify.Notifier
	actions  *Actions
}

func newFixture() *fixture {
	loop := utils.NewEventLoop(nil)
	f := &fixture{
		api:      &fakeAPI{},
		store:    store.NewStore(loop),
		notifier: notify.NewNotifier(loop, utils.NewManualScheduler(loop), time.Second, nil, nil),
	}
	f.actions = NewActions(f.api, f.store, f.notifier, nil)
	return f
}

func (f *fixture) notice(t *testing.T) models.MNotification {
	t.Helper()
	n, ok := f.notifier.Current()
	require.True(t, ok, "expected an active notification")
	return n
}

// -----------------------------------------------------------------------------

func TestActions_PlaceOrderSuccess(t *testing.T) {
	f := newFixture()
	f.api.order = &models.MOrder{ID: "9", Symbol: "AAPL", Side: models.OrderSideBuy, Quantity: 5, Status: models.OrderStatusPending}

	order, err := f.actions.PlaceOrder(context.Background(), models.MOrderRequest{Symbol: "AAPL"})
	require.NoError(t, err)
	assert.Equal(t, "9", order.ID)

	assert.Equal(t, []models.MOrder{*f.api.order}, f.store.Orders())
	n := f.notice(t)
	assert.Equal(t, models.SeverityInfo, n.Severity)
	assert.Equal(t, "Order placed: BUY 5 AAPL", n.Message)
}

func TestActions_PlaceOrderFailureRaisesErrorNotice(t *testing.T) {
	f := newFixture()
	f.api.err = helpers.NewRequestError("place order", 500, nil)

	_, err := f.actions.PlaceOrder(context.Background(), models.MOrderRequest{Symbol: "AAPL"})
	require.Error(t, err)

	assert.Empty(t, f.store.Orders())
	n := f.notice(t)
	assert.Equal(t, models.SeverityError, n.Severity)
	assert.Contains(t, n.Message, "Failed to place order")
	assert.Contains(t, n.Message, "status 500")
}

func TestActions_CancelOrderDoesNotTouchStore(t *testing.T) {
	f := newFixture()
	f.store.ReplaceOrders([]models.MOrder{{ID: "1", Status: models.OrderStatusPending}})

	require.NoError(t, f.actions.CancelOrder(context.Background(), "1"))
	assert.Equal(t, []string{"1"}, f.api.cancelled)
	assert.Equal(t, models.OrderStatusPending, f.store.Orders()[0].Status)
	assert.Equal(t, models.SeverityInfo, f.notice(t).Severity)
}

func TestActions_LoadOrdersAndPortfolioHydrateStore(t *testing.T) {
	f := newFixture()
	f.api.orders = []models.MOrder{{ID: "1"}, {ID: "2"}}
	f.api.portfolio = &models.MPortfolio{TotalValue: 42}

	_, err := f.actions.LoadOrders(context.Background())
	require.NoError(t, err)
	_, err = f.actions.LoadPortfolio(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.store.Orders(), 2)
	require.NotNil(t, f.store.Portfolio())
	assert.Equal(t, 42.0, f.store.Portfolio().TotalValue)
	_, ok := f.notifier.Current()
	assert.False(t, ok, "loads are silent on success")
}

func TestActions_LoadFailuresAreNotified(t *testing.T) {
	f := newFixture()
	f.api.err = helpers.NewRequestError("get portfolio", 0, nil)

	_, err := f.actions.LoadPortfolio(context.Background())
	require.Error(t, err)
	assert.Nil(t, f.store.Portfolio())
	assert.Equal(t, models.SeverityError, f.notice(t).Severity)

	_, err = f.actions.LoadMarketData(context.Background(), "AAPL", "1d")
	assert.Error(t, err)
	_, err = f.actions.LoadAccountInfo(context.Background())
	assert.Error(t, err)
	_, err = f.actions.LoadSupportedTickers(context.Background())
	assert.Error(t, err)
}

func TestActions_RunBacktest(t *testing.T) {
	f := newFixture()
	f.api.backtest = &models.MBacktestResult{TotalReturn: 12.5}

	result, err := f.actions.RunBacktest(context.Background(), models.MBacktestRequest{})
	require.NoError(t, err)
	assert.Equal(t, 12.5, result.TotalReturn)
	assert.Equal(t, "Backtest completed: 12.50% total return", f.notice(t).Message)
}
