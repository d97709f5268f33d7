package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	logger "github.com/sirupsen/logrus"

	"alertexecutor/src/model"
)

// ErrInvalidAlert marks a webhook body that failed the alert shape check.
var ErrInvalidAlert = fmt.Errorf("invalid alert payload")

// Quote assets recognized when splitting a concatenated symbol, checked in
// this order. USDT must come before USD so BTCUSDT does not split as
// BTCUSD-T.
var knownQuotes = []string{"USDT", "BUSD", "USD", "USDC", "BTC", "ETH"}

// rawAlert mirrors model.Alert with pointer fields so that missing keys
// are distinguishable from zero values. A type mismatch anywhere in the
// body (e.g. a numeric tps price) fails the decode outright.
type rawAlert struct {
	Symbol          *string   `json:"symbol"`
	Side            *string   `json:"side"`
	Entry           *string   `json:"entry"`
	Winrate         *string   `json:"winrate"`
	Strategy        *string   `json:"strategy"`
	BeTargetTrigger *string   `json:"beTargetTrigger"`
	Stop            *string   `json:"stop"`
	Size            *string   `json:"size"`
	Tps             []rawTier `json:"tps"`
}

type rawTier struct {
	Price      *string `json:"price"`
	Investment *string `json:"investment"`
}

// ParseAlert validates the webhook body against the alert shape and
// returns a typed Alert. Every required field must be present with the
// exact JSON type; no coercion is applied.
func ParseAlert(raw []byte) (*model.Alert, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlert, err)
	}
	tpsRaw, ok := probe["tps"]
	if !ok {
		return nil, fmt.Errorf("%w: missing field tps", ErrInvalidAlert)
	}
	if trimmed := bytes.TrimSpace(tpsRaw); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: tps must be an array", ErrInvalidAlert)
	}

	var ra rawAlert
	if err := json.Unmarshal(raw, &ra); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAlert, err)
	}

	required := map[string]*string{
		"symbol":          ra.Symbol,
		"side":            ra.Side,
		"entry":           ra.Entry,
		"winrate":         ra.Winrate,
		"strategy":        ra.Strategy,
		"beTargetTrigger": ra.BeTargetTrigger,
		"stop":            ra.Stop,
		"size":            ra.Size,
	}
	for field, value := range required {
		if value == nil {
			return nil, fmt.Errorf("%w: missing field %s", ErrInvalidAlert, field)
		}
	}

	if *ra.Side != model.SideLong && *ra.Side != model.SideShort {
		return nil, fmt.Errorf("%w: side must be LONG or SHORT, got %q", ErrInvalidAlert, *ra.Side)
	}

	switch *ra.BeTargetTrigger {
	case "1", "2", "3", "WITHOUT":
	default:
		return nil, fmt.Errorf("%w: beTargetTrigger must be 1, 2, 3 or WITHOUT, got %q", ErrInvalidAlert, *ra.BeTargetTrigger)
	}

	tps := make([]model.TakeProfitTier, 0, len(ra.Tps))
	for i, tier := range ra.Tps {
		if tier.Price == nil || tier.Investment == nil {
			return nil, fmt.Errorf("%w: tps[%d] must have string price and investment", ErrInvalidAlert, i)
		}
		tps = append(tps, model.TakeProfitTier{Price: *tier.Price, Investment: *tier.Investment})
	}

	return &model.Alert{
		Symbol:          *ra.Symbol,
		Side:            *ra.Side,
		Entry:           *ra.Entry,
		Winrate:         *ra.Winrate,
		Strategy:        *ra.Strategy,
		BeTargetTrigger: *ra.BeTargetTrigger,
		Stop:            *ra.Stop,
		Size:            *ra.Size,
		Tps:             tps,
	}, nil
}

// ParseSymbol rewrites a TradingView-style symbol into the exchange's
// dashed notation, e.g. BTCUSDT -> BTC-USDT and ETHUSDT.P -> ETH-USDT.
//
// The fallback chain is ordered: known quote suffixes first, then a
// generic 3-letter quote split, then the uppercased input unchanged. This
// is the only point reconciling alert notation with exchange notation; a
// silently wrong split routes an order to a non-existent instrument.
func ParseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimSuffix(s, ".P")

	if isLetters(s) {
		for _, quote := range knownQuotes {
			base := strings.TrimSuffix(s, quote)
			if base != s && base != "" {
				return base + "-" + quote
			}
		}
		// Generic split: treat the last three letters as the quote asset.
		if len(s) >= 4 {
			return s[:len(s)-3] + "-" + s[len(s)-3:]
		}
	}

	logger.WithField("symbol", symbol).Debug("symbol did not match any quote pattern, passing through")
	return s
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// TransformAlert returns a copy of the alert with the symbol rewritten to
// the exchange's canonical form. All other fields pass through unchanged.
func TransformAlert(a *model.Alert) *model.Alert {
	out := *a
	out.Symbol = ParseSymbol(a.Symbol)
	return &out
}
