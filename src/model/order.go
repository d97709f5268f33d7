package model

// Order type and side values accepted by the BingX swap order endpoint.
const (
	OrderTypeMarket           = "MARKET"
	OrderTypeLimit            = "LIMIT"
	OrderTypeTakeProfit       = "TAKE_PROFIT"
	OrderTypeTakeProfitMarket = "TAKE_PROFIT_MARKET"
	OrderTypeStopMarket       = "STOP_MARKET"

	OrderSideBuy  = "BUY"
	OrderSideSell = "SELL"

	WorkingTypeMarkPrice = "MARK_PRICE"
)

// OrderLeg is a stop-loss or take-profit sub-order embedded in the primary
// order payload. BingX expects it JSON-string-encoded inside the parent
// order's takeProfit / stopLoss field. Quantity is only set for legs built
// from an investment tier; a zero quantity is omitted from the wire form
// and means "close the full position".
type OrderLeg struct {
	Type        string  `json:"type"`
	StopPrice   float64 `json:"stopPrice"`
	Price       float64 `json:"price"`
	WorkingType string  `json:"workingType"`
	Quantity    float64 `json:"quantity,omitempty"`
}

// OrderRequest is one order to submit to the exchange. Quantities and
// prices are IEEE-754 float64; the planner produces them with plain float
// division and they are serialized with the shortest round-trip form.
type OrderRequest struct {
	Symbol        string
	Type          string
	Side          string
	PositionSide  string
	Quantity      float64
	Price         float64 // limit orders only
	TakeProfit    *OrderLeg
	StopLoss      *OrderLeg
	ClientOrderID string
}

// OrderPlan is the ordered result of planning one alert: the primary
// market order followed by zero or more secondary take-profit limit
// orders, submitted in that order.
type OrderPlan struct {
	Primary     OrderRequest
	Secondaries []OrderRequest
}

// Orders returns the plan as a single submission-ordered slice.
func (p *OrderPlan) Orders() []OrderRequest {
	out := make([]OrderRequest, 0, 1+len(p.Secondaries))
	out = append(out, p.Primary)
	out = append(out, p.Secondaries...)
	return out
}
