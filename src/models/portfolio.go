package models

// MPosition is supplied by the backend as-is. Negative quantity means short.
type MPosition struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	EntryPrice   float64 `json:"entryPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnlPercent"`
}

// -----------------------------------------------------------------------------

// MPortfolio is always replaced wholesale.
type MPortfolio struct {
	TotalValue  float64     `json:"totalValue"`
	CashBalance float64     `json:"cashBalance"`
	DayPnL      float64     `json:"dayPnL"`
	Positions   []MPosition `json:"positions"`
}

// Clone returns a copy that does not share the positions slice.
func (p MPortfolio) Clone() MPortfolio {
	out := p
	if p.Positions != nil {
		out.Positions = append([]MPosition(nil), p.Positions...)
	}
	return out
}

// -----------------------------------------------------------------------------

// MAccountInfo is returned by the account endpoint.
type MAccountInfo struct {
	AccountID   string  `json:"accountId"`
	Currency    string  `json:"currency"`
	BuyingPower float64 `json:"buyingPower"`
	Equity      float64 `json:"equity"`
}
