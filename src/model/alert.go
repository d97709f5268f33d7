package model

// Alert side values as delivered by the TradingView alert template.
const (
	SideLong  = "LONG"
	SideShort = "SHORT"
)

// TakeProfitTier is one take-profit level of an alert: a target price and
// the percentage of the position allocated to it.
type TakeProfitTier struct {
	Price      string `json:"price"`
	Investment string `json:"investment"`
}

// Alert is a validated trading alert. It is built once by the mapper from
// the raw webhook body and never mutated afterwards, except for the symbol
// rewrite into the exchange's dashed notation.
type Alert struct {
	Symbol          string           `json:"symbol"`
	Side            string           `json:"side"`
	Entry           string           `json:"entry"`
	Winrate         string           `json:"winrate"`
	Strategy        string           `json:"strategy"`
	BeTargetTrigger string           `json:"beTargetTrigger"`
	Stop            string           `json:"stop"`
	Size            string           `json:"size"`
	Tps             []TakeProfitTier `json:"tps"`
}

// WebhookResponse is the JSON envelope returned to the webhook caller.
type WebhookResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
