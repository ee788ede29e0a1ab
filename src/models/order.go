package models

import (
	"encoding/json"
	"fmt"
)

// -----------------------------------------------------------------------------
// Order enums
// -----------------------------------------------------------------------------

type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

type OrderType string

const (
	OrderTypeMarket OrderType = "market"
	OrderTypeLimit  OrderType = "limit"
	OrderTypeStop   OrderType = "stop"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// -----------------------------------------------------------------------------

func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

func (s *OrderSide) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unsupported order side: %s", string(data))
	}
	if !OrderSide(raw).Valid() {
		return fmt.Errorf("unsupported order side: %q", raw)
	}
	*s = OrderSide(raw)
	return nil
}

// -----------------------------------------------------------------------------

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit, OrderTypeStop:
		return true
	}
	return false
}

func (t *OrderType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unsupported order type: %s", string(data))
	}
	if !OrderType(raw).Valid() {
		return fmt.Errorf("unsupported order type: %q", raw)
	}
	*t = OrderType(raw)
	return nil
}

// -----------------------------------------------------------------------------

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusFilled, OrderStatusCancelled:
		return true
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unsupported order status: %s", string(data))
	}
	if !OrderStatus(raw).Valid() {
		return fmt.Errorf("unsupported order status: %q", raw)
	}
	*s = OrderStatus(raw)
	return nil
}

// -----------------------------------------------------------------------------
// Order
// -----------------------------------------------------------------------------

// MOrder is an order as confirmed by the backend. Price is nil for market orders.
type MOrder struct {
	ID        string      `json:"id"`
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Type      OrderType   `json:"type"`
	Quantity  float64     `json:"quantity"`
	Price     *float64    `json:"price,omitempty"`
	Status    OrderStatus `json:"status"`
	Timestamp int64       `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MOrderRequest is the client-side intent sent through the request boundary.
type MOrderRequest struct {
	ClientOrderID string    `json:"clientOrderId,omitempty"`
	Symbol        string    `json:"symbol"`
	Side          OrderSide `json:"side"`
	Type          OrderType `json:"type"`
	Quantity      float64   `json:"quantity"`
	Price         *float64  `json:"price,omitempty"`
}

// Validate checks the request before it leaves the process.
func (r MOrderRequest) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if !r.Side.Valid() {
		return fmt.Errorf("unsupported order side: %q", r.Side)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("unsupported order type: %q", r.Type)
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %v", r.Quantity)
	}
	if r.Type != OrderTypeMarket {
		if r.Price == nil {
			return fmt.Errorf("price is required for %s orders", r.Type)
		}
		if *r.Price <= 0 {
			return fmt.Errorf("price must be positive, got %v", *r.Price)
		}
	}
	return nil
}
