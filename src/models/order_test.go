package models_test

import (
	"encoding/json"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"gotest.tools/v3/assert"

	"market-dashboard/src/models"
)

type testOrderDataSide struct {
	Side models.OrderSide `json:"side"`
}

type testOrderDataStatus struct {
	Status models.OrderStatus `json:"status"`
}

const (
	testOrderDataSideSell      = `{"side":"sell"}`
	testOrderDataSideBuy       = `{"side":"buy"}`
	testOrderDataStatusFilled  = `{"status":"filled"}`
	testOrderDataStatusUnknown = `{"status":"partially_filled"}`
)

func TestOrderSide_UnmarshalJSON(t *testing.T) {
	var obj testOrderDataSide

	err := json.Unmarshal([]byte(testOrderDataSideSell), &obj)
	assert.NilError(t, err)
	assert.Equal(t, obj.Side, models.OrderSideSell, "std json sell")

	err = jsoniter.Unmarshal([]byte(testOrderDataSideBuy), &obj)
	assert.NilError(t, err)
	assert.Equal(t, obj.Side, models.OrderSideBuy, "jsoniter json buy")

	err = json.Unmarshal([]byte(`{"side":"short"}`), &obj)
	assert.ErrorContains(t, err, `unsupported order side: "short"`)

	err = jsoniter.Unmarshal([]byte(`{"side":1}`), &obj)
	assert.ErrorContains(t, err, `unsupported order side`)
}

func TestOrderStatus_UnmarshalJSON(t *testing.T) {
	var obj testOrderDataStatus

	err := json.Unmarshal([]byte(testOrderDataStatusFilled), &obj)
	assert.NilError(t, err)
	assert.Equal(t, obj.Status, models.OrderStatusFilled)

	err = jsoniter.Unmarshal([]byte(testOrderDataStatusUnknown), &obj)
	assert.ErrorContains(t, err, `unsupported order status: "partially_filled"`)
}

func TestOrderType_Valid(t *testing.T) {
	for _, v := range []models.OrderType{models.OrderTypeMarket, models.OrderTypeLimit, models.OrderTypeStop} {
		assert.Assert(t, v.Valid(), string(v))
	}
	assert.Assert(t, !models.OrderType("stop_limit").Valid())
	assert.Assert(t, !models.OrderType("").Valid())
}

func TestOrder_MarshalJSON(t *testing.T) {
	price := 150.25
	val, err := json.Marshal(models.MOrder{
		ID:        "42",
		Symbol:    "AAPL",
		Side:      models.OrderSideBuy,
		Type:      models.OrderTypeLimit,
		Quantity:  10,
		Price:     &price,
		Status:    models.OrderStatusPending,
		Timestamp: 1700000000,
	})
	assert.NilError(t, err)
	assert.Equal(t, string(val),
		`{"id":"42","symbol":"AAPL","side":"buy","type":"limit","quantity":10,"price":150.25,"status":"pending","timestamp":1700000000}`)

	val, err = jsoniter.Marshal(models.MOrder{ID: "1", Symbol: "MSFT", Side: models.OrderSideSell, Type: models.OrderTypeMarket, Quantity: 1, Status: models.OrderStatusFilled})
	assert.NilError(t, err)
	assert.Equal(t, string(val),
		`{"id":"1","symbol":"MSFT","side":"sell","type":"market","quantity":1,"status":"filled","timestamp":0}`,
		"market orders omit price")
}

func TestOrderRequest_Validate(t *testing.T) {
	price := 10.0
	zero := 0.0

	tests := []struct {
		name string
		req  models.MOrderRequest
		err  string
	}{
		{"market", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideBuy, Type: models.OrderTypeMarket, Quantity: 1}, ""},
		{"limit", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideSell, Type: models.OrderTypeLimit, Quantity: 2, Price: &price}, ""},
		{"no symbol", models.MOrderRequest{Side: models.OrderSideBuy, Type: models.OrderTypeMarket, Quantity: 1}, "symbol is required"},
		{"bad side", models.MOrderRequest{Symbol: "AAPL", Side: "hold", Type: models.OrderTypeMarket, Quantity: 1}, "unsupported order side"},
		{"bad type", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideBuy, Type: "iceberg", Quantity: 1}, "unsupported order type"},
		{"zero quantity", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideBuy, Type: models.OrderTypeMarket}, "quantity must be positive"},
		{"limit without price", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideBuy, Type: models.OrderTypeLimit, Quantity: 1}, "price is required for limit orders"},
		{"stop with zero price", models.MOrderRequest{Symbol: "AAPL", Side: models.OrderSideBuy, Type: models.OrderTypeStop, Quantity: 1, Price: &zero}, "price must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.err == "" {
				assert.NilError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestBacktestRequest_Validate(t *testing.T) {
	ok := models.MBacktestRequest{Ticker: "AAPL", StartDate: "2024-01-01", EndDate: "2024-06-30", InitialCapital: 10000}
	assert.NilError(t, ok.Validate())

	reversed := ok
	reversed.StartDate, reversed.EndDate = ok.EndDate, ok.StartDate
	assert.ErrorContains(t, reversed.Validate(), "is before start_date")

	badDate := ok
	badDate.StartDate = "01/01/2024"
	assert.ErrorContains(t, badDate.Validate(), "invalid start_date")

	noCapital := ok
	noCapital.InitialCapital = 0
	assert.ErrorContains(t, noCapital.Validate(), "initial_capital must be positive")
}

func TestPortfolio_Clone(t *testing.T) {
	p := models.MPortfolio{
		TotalValue: 100,
		Positions:  []models.MPosition{{Symbol: "AAPL", Quantity: 1}},
	}
	c := p.Clone()
	c.Positions[0].Quantity = 5

	assert.Equal(t, p.Positions[0].Quantity, 1.0)
	assert.Equal(t, c.TotalValue, 100.0)
}
