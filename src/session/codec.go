package session

import (
	"bytes"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"market-dashboard/src/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrUnknownFrameType marks a well-formed frame whose type is not one of the
// inbound frame types.
var ErrUnknownFrameType = errors.New("unknown frame type")

var nullLiteral = []byte("null")

// -----------------------------------------------------------------------------

type envelope struct {
	Type   models.FrameType    `json:"type"`
	Symbol string              `json:"symbol"`
	Data   jsoniter.RawMessage `json:"data"`
}

// -----------------------------------------------------------------------------

// DecodeInbound parses one text frame into its typed variant. Unknown types
// return an error wrapping ErrUnknownFrameType; anything that does not match
// the expected shape is rejected.
func DecodeInbound(data []byte) (models.InboundFrame, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(err, "malformed frame")
	}
	if env.Type == "" {
		return nil, errors.New("malformed frame: missing type")
	}

	switch env.Type {
	case models.FrameMarketData:
		if env.Symbol == "" {
			return nil, errors.New("MARKET_DATA frame without symbol")
		}
		var tick models.MMarketTick
		if err := decodeData(env, &tick); err != nil {
			return nil, err
		}
		tick.Symbol = env.Symbol
		return models.MMarketDataFrame{Type: env.Type, Symbol: env.Symbol, Data: tick}, nil

	case models.FramePortfolioUpdate:
		var portfolio models.MPortfolio
		if err := decodeData(env, &portfolio); err != nil {
			return nil, err
		}
		return models.MPortfolioUpdateFrame{Type: env.Type, Data: portfolio}, nil

	case models.FrameOrderUpdate:
		var order models.MOrder
		if err := decodeData(env, &order); err != nil {
			return nil, err
		}
		if err := checkOrder(order); err != nil {
			return nil, errors.Wrap(err, "ORDER_UPDATE frame")
		}
		return models.MOrderUpdateFrame{Type: env.Type, Data: order}, nil
	}

	return nil, errors.Wrapf(ErrUnknownFrameType, "%q", string(env.Type))
}

// -----------------------------------------------------------------------------

func decodeData(env envelope, out interface{}) error {
	raw := bytes.TrimSpace(env.Data)
	if len(raw) == 0 || bytes.Equal(raw, nullLiteral) {
		return errors.Errorf("%s frame without data", env.Type)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "%s frame data", env.Type)
	}
	return nil
}

// -----------------------------------------------------------------------------

func checkOrder(order models.MOrder) error {
	if order.ID == "" {
		return errors.New("order without id")
	}
	if !order.Side.Valid() {
		return errors.Errorf("order %s: missing side", order.ID)
	}
	if !order.Type.Valid() {
		return errors.Errorf("order %s: missing type", order.ID)
	}
	if !order.Status.Valid() {
		return errors.Errorf("order %s: missing status", order.ID)
	}
	return nil
}

// -----------------------------------------------------------------------------

// EncodeCommand builds a SUBSCRIBE or UNSUBSCRIBE frame.
func EncodeCommand(frameType models.FrameType, symbols []string) ([]byte, error) {
	if frameType != models.FrameSubscribe && frameType != models.FrameUnsubscribe {
		return nil, errors.Errorf("not a command frame type: %s", frameType)
	}
	if symbols == nil {
		symbols = []string{}
	}
	return json.Marshal(models.MCommandFrame{Type: frameType, Symbols: symbols})
}
