package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"alertexecutor/src/model"
)

const validBody = `{
	"symbol": "BTCUSDT",
	"side": "LONG",
	"entry": "50000",
	"winrate": "62%",
	"strategy": "breaker",
	"beTargetTrigger": "1",
	"stop": "48000",
	"size": "1000",
	"tps": [
		{"price": "51000", "investment": "50%"},
		{"price": "52000", "investment": "50%"}
	]
}`

func TestParseAlertValid(t *testing.T) {
	alert, err := ParseAlert([]byte(validBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assert.Equal(t, "BTCUSDT", alert.Symbol)
	assert.Equal(t, model.SideLong, alert.Side)
	assert.Equal(t, "50000", alert.Entry)
	assert.Equal(t, "48000", alert.Stop)
	assert.Equal(t, "1000", alert.Size)
	assert.Len(t, alert.Tps, 2)
	assert.Equal(t, "51000", alert.Tps[0].Price)
	assert.Equal(t, "50%", alert.Tps[0].Investment)
}

func TestParseAlertEmptyTpsIsValid(t *testing.T) {
	body := `{
		"symbol": "BTCUSDT", "side": "SHORT", "entry": "50000",
		"winrate": "50%", "strategy": "s", "beTargetTrigger": "WITHOUT",
		"stop": "52000", "size": "100", "tps": []
	}`

	alert, err := ParseAlert([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Empty(t, alert.Tps)
}

func TestParseAlertRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `not json`},
		{"missing stop", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"size": "1000", "tps": []
		}`},
		{"invalid side", `{
			"symbol": "BTCUSDT", "side": "MID", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"stop": "48000", "size": "1000", "tps": []
		}`},
		{"invalid beTargetTrigger", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "4",
			"stop": "48000", "size": "1000", "tps": []
		}`},
		{"numeric entry", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": 50000,
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"stop": "48000", "size": "1000", "tps": []
		}`},
		{"tps not an array", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"stop": "48000", "size": "1000", "tps": null
		}`},
		{"tps price is a number", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"stop": "48000", "size": "1000",
			"tps": [{"price": 51000, "investment": "100%"}]
		}`},
		{"tps entry missing investment", `{
			"symbol": "BTCUSDT", "side": "LONG", "entry": "50000",
			"winrate": "60%", "strategy": "s", "beTargetTrigger": "1",
			"stop": "48000", "size": "1000",
			"tps": [{"price": "51000"}]
		}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAlert([]byte(tc.body))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidAlert) {
				t.Fatalf("expected ErrInvalidAlert, got %v", err)
			}
		})
	}
}

func TestParseSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BTCUSDT", "BTC-USDT"},
		{"ETHUSDT.P", "ETH-USDT"},
		{"ethusdt.p", "ETH-USDT"},
		{"BTCUSD", "BTC-USD"},
		{"SOLBUSD", "SOL-BUSD"},
		{"SOLUSDC", "SOL-USDC"},
		{"WBTCBTC", "WBTC-BTC"},
		{"ARBETH", "ARB-ETH"},
		// Generic split: last three letters become the quote asset.
		{"LTCEUR", "LTC-EUR"},
		// Digits disable every pattern; input passes through uppercased.
		{"1000PEPEUSDT", "1000PEPEUSDT"},
		{"BTC", "BTC"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := ParseSymbol(tc.in); got != tc.want {
			t.Errorf("ParseSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTransformAlertRewritesOnlySymbol(t *testing.T) {
	alert, err := ParseAlert([]byte(validBody))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := TransformAlert(alert)

	assert.Equal(t, "BTC-USDT", out.Symbol)
	assert.Equal(t, "BTCUSDT", alert.Symbol, "input alert must not be mutated")
	assert.Equal(t, alert.Entry, out.Entry)
	assert.Equal(t, alert.Tps, out.Tps)
}
