package connectors

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderLegField is a stop-loss or take-profit leg as the exchange returns
// it inside an order object: either a JSON object or a JSON-encoded
// string. A string form is decoded one level deeper on a best-effort
// basis; when that decode fails the raw string is kept and Leg stays nil.
type OrderLegField struct {
	Raw string
	Leg *PlacedOrderLeg
}

// PlacedOrderLeg mirrors the leg shape echoed by the exchange.
type PlacedOrderLeg struct {
	Type        string      `json:"type"`
	StopPrice   float64     `json:"stopPrice"`
	Price       float64     `json:"price"`
	WorkingType string      `json:"workingType"`
	Quantity    json.Number `json:"quantity,omitempty"`
}

func (f *OrderLegField) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		f.Raw = s

		var leg PlacedOrderLeg
		if err := json.Unmarshal([]byte(s), &leg); err == nil {
			f.Leg = &leg
		}
		// A string that is not nested JSON stays opaque.
		return nil
	}

	var leg PlacedOrderLeg
	if err := json.Unmarshal(trimmed, &leg); err != nil {
		return err
	}
	f.Leg = &leg
	return nil
}

// PlacedOrder is the order object returned by the order-placement
// endpoint. Identifiers use json.Number because they routinely exceed
// float64's safe integer range.
type PlacedOrder struct {
	Symbol        string        `json:"symbol"`
	OrderID       json.Number   `json:"orderId"`
	Side          string        `json:"side"`
	PositionSide  string        `json:"positionSide"`
	Type          string        `json:"type"`
	ClientOrderID string        `json:"clientOrderID"`
	TakeProfit    OrderLegField `json:"takeProfit"`
	StopLoss      OrderLegField `json:"stopLoss"`
}

// ParsePlacedOrder decodes the order object out of a normalized response,
// including the second-pass decode of string-encoded TP/SL legs.
func ParsePlacedOrder(resp *Response) (*PlacedOrder, error) {
	if resp == nil || !resp.Success {
		return nil, fmt.Errorf("response carries no data")
	}

	var data struct {
		Order *PlacedOrder `json:"order"`
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Data))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if data.Order == nil {
		return nil, fmt.Errorf("order response has no order object")
	}
	return data.Order, nil
}
