package models

import (
	"fmt"
	"time"
)

// MCandle is one OHLCV bar returned by the market data endpoint.
type MCandle struct {
	Symbol    string  `json:"symbol"`
	Timeframe string  `json:"timeframe"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	Timestamp int64   `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// Backtest request/response (computed server-side)
// -----------------------------------------------------------------------------

type MBacktestRequest struct {
	Ticker         string  `json:"ticker"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	InitialCapital float64 `json:"initial_capital"`
}

type MBacktestTrade struct {
	Date     string  `json:"date"`
	Action   string  `json:"action"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
}

type MBacktestResult struct {
	PortfolioValues []map[string]interface{} `json:"portfolio_values"`
	Trades          []MBacktestTrade         `json:"trades"`
	FinalValue      float64                  `json:"final_value"`
	TotalReturn     float64                  `json:"total_return"`
	SharpeRatio     float64                  `json:"sharpe_ratio"`
}

// -----------------------------------------------------------------------------

// Validate rejects requests the backend would refuse anyway.
func (r MBacktestRequest) Validate() error {
	if r.Ticker == "" {
		return fmt.Errorf("ticker is required")
	}
	start, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start_date %q: %w", r.StartDate, err)
	}
	end, err := time.Parse(time.DateOnly, r.EndDate)
	if err != nil {
		return fmt.Errorf("invalid end_date %q: %w", r.EndDate, err)
	}
	if end.Before(start) {
		return fmt.Errorf("end_date %s is before start_date %s", r.EndDate, r.StartDate)
	}
	if r.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive")
	}
	return nil
}
