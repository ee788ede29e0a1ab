package models

// MMarketHours describes the trading session of the exchange a symbol is listed on.
type MMarketHours struct {
	Symbol         string `json:"symbol"`
	MIC            string `json:"mic"`
	Timezone       string `json:"timezone"`
	Open           bool   `json:"open"`
	TradingDay     bool   `json:"tradingDay"`
	NextTradingDay string `json:"nextTradingDay,omitempty"`
	Approximate    bool   `json:"approximate"`
}
