package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/network"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

// Client is the request/response boundary of the dashboard. Every failure is
// returned as a *helpers.RequestError.
type Client struct {
	baseURL string
	http    *network.HTTPClient
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewClient(cfg models.MAPIConfig, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    network.NewHTTPClient(cfg, log.Named("http")),
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------
// Orders
// -----------------------------------------------------------------------------

// PlaceOrder submits req. A missing client order id is generated so the
// backend can deduplicate.
func (c *Client) PlaceOrder(ctx context.Context, req models.MOrderRequest) (*models.MOrder, error) {
	const op = "place order"

	if err := req.Validate(); err != nil {
		return nil, helpers.NewRequestError(op, 0, helpers.NewValidationError("invalid order", err))
	}
	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	var order models.MOrder
	if err := c.call(ctx, op, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// -----------------------------------------------------------------------------

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	const op = "cancel order"

	if orderID == "" {
		return helpers.NewRequestError(op, 0, helpers.NewValidationError("order id is required", nil))
	}
	return c.call(ctx, op, http.MethodDelete, "/api/orders/"+url.PathEscape(orderID), nil, nil)
}

// -----------------------------------------------------------------------------

func (c *Client) GetOrders(ctx context.Context) ([]models.MOrder, error) {
	var orders []models.MOrder
	if err := c.call(ctx, "get orders", http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// -----------------------------------------------------------------------------
// Portfolio / account
// -----------------------------------------------------------------------------

func (c *Client) GetPortfolio(ctx context.Context) (*models.MPortfolio, error) {
	var portfolio models.MPortfolio
	if err := c.call(ctx, "get portfolio", http.MethodGet, "/api/portfolio", nil, &portfolio); err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// -----------------------------------------------------------------------------

func (c *Client) GetAccountInfo(ctx context.Context) (*models.MAccountInfo, error) {
	var info models.MAccountInfo
	if err := c.call(ctx, "get account info", http.MethodGet, "/api/account", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// -----------------------------------------------------------------------------
// Market data / backtest
// -----------------------------------------------------------------------------

func (c *Client) GetMarketData(ctx context.Context, symbol, timeframe string) ([]models.MCandle, error) {
	const op = "get market data"

	if symbol == "" {
		return nil, helpers.NewRequestError(op, 0, helpers.NewValidationError("symbol is required", nil))
	}
	path := "/api/market-data/" + url.PathEscape(symbol)
	if timeframe != "" {
		path += "?" + url.Values{"timeframe": {timeframe}}.Encode()
	}

	var candles []models.MCandle
	if err := c.call(ctx, op, http.MethodGet, path, nil, &candles); err != nil {
		return nil, err
	}
	return candles, nil
}

// -----------------------------------------------------------------------------

func (c *Client) RunBacktest(ctx context.Context, req models.MBacktestRequest) (*models.MBacktestResult, error) {
	const op = "run backtest"

	if err := req.Validate(); err != nil {
		return nil, helpers.NewRequestError(op, 0, helpers.NewValidationError("invalid backtest", err))
	}

	var result models.MBacktestResult
	if err := c.call(ctx, op, http.MethodPost, "/api/backtest", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// -----------------------------------------------------------------------------

func (c *Client) GetSupportedTickers(ctx context.Context) ([]string, error) {
	var body struct {
		Tickers []string `json:"tickers"`
	}
	if err := c.call(ctx, "get supported tickers", http.MethodGet, "/api/supported-tickers", nil, &body); err != nil {
		return nil, err
	}
	return body.Tickers, nil
}

// -----------------------------------------------------------------------------
// Transport
// -----------------------------------------------------------------------------

// call sends in (when non-nil) as JSON and decodes a 2xx body into out (when
// non-nil). Everything that goes wrong becomes a RequestError.
func (c *Client) call(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return helpers.NewRequestError(op, 0, err)
		}
	}

	requestID := uuid.NewString()
	resp, err := c.http.Do(ctx, method, c.baseURL+path, body, map[string]string{"X-Request-ID": requestID})
	if err != nil {
		c.Logger.Warning("%s [%s] failed: %v", op, requestID, err)
		return helpers.NewRequestError(op, 0, &helpers.TransportError{DashboardError: helpers.DashboardError{
			Message: "request failed",
			Cause:   err,
		}})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(resp.Body)
		c.Logger.Warning("%s [%s] returned %d: %s", op, requestID, resp.StatusCode, detail)
		var cause error
		if detail != "" {
			cause = &helpers.DashboardError{Message: detail}
		}
		return helpers.NewRequestError(op, resp.StatusCode, cause)
	}

	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return helpers.NewRequestError(op, resp.StatusCode, &helpers.DecodeError{DashboardError: helpers.DashboardError{
			Message: "invalid response body",
			Cause:   err,
		}})
	}
	return nil
}

// -----------------------------------------------------------------------------

// errorDetail extracts the message of a FastAPI style {"detail": "..."} or
// {"error": "..."} body.
func errorDetail(body []byte) string {
	var payload struct {
		Detail interface{} `json:"detail"`
		Error  string      `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if s, ok := payload.Detail.(string); ok && s != "" {
		return s
	}
	return payload.Error
}
