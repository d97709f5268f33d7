package controller

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"alertexecutor/src/connectors"
	"alertexecutor/src/model"
	"alertexecutor/src/planner"
)

const (
	orderEndpoint     = "/openApi/swap/v2/trade/order"
	orderTestEndpoint = "/openApi/swap/v2/trade/order/test"
	balanceEndpoint   = "/openApi/swap/v3/user/balance"

	// Fixed request window tolerance in milliseconds.
	recvWindow = 5000
)

type exchangeClient interface {
	Get(path string, params map[string]interface{}, private bool) (*connectors.Response, error)
	Post(path string, data map[string]interface{}, private bool) (*connectors.Response, error)
}

// OrderExecutor turns normalized alerts into exchange order submissions.
// It holds only the read-only client reference; every webhook is handled
// independently with no shared mutable state.
type OrderExecutor struct {
	client exchangeClient
}

func NewOrderExecutor(client exchangeClient) *OrderExecutor {
	return &OrderExecutor{client: client}
}

// ExecuteAlert plans the alert and submits the resulting orders. Returns
// the exchange responses in submission order.
func (e *OrderExecutor) ExecuteAlert(alert *model.Alert) ([]*connectors.Response, error) {
	plan, err := planner.Plan(alert)
	if err != nil {
		return nil, fmt.Errorf("plan alert: %w", err)
	}
	return e.SubmitPlan(plan)
}

// SubmitPlan sends the primary order and then each secondary LIMIT order
// sequentially, awaiting each response. The first failure aborts the
// remaining submissions; orders already placed stay live and are not
// compensated.
func (e *OrderExecutor) SubmitPlan(plan *model.OrderPlan) ([]*connectors.Response, error) {
	var responses []*connectors.Response

	for i, order := range plan.Orders() {
		params, err := orderParams(order)
		if err != nil {
			return responses, err
		}

		logger.WithFields(logger.Fields{
			"symbol":   order.Symbol,
			"type":     order.Type,
			"side":     order.Side,
			"posSide":  order.PositionSide,
			"quantity": order.Quantity,
		}).Info("Placing BingX order")

		resp, err := e.client.Post(orderEndpoint, params, true)
		if err != nil {
			logger.WithError(err).WithFields(logger.Fields{
				"symbol": order.Symbol,
				"index":  i,
			}).Error("BingX order submission failed")
			return responses, fmt.Errorf("submit order %d/%d: %w", i+1, len(plan.Secondaries)+1, err)
		}
		responses = append(responses, resp)

		if !resp.Success {
			logger.WithFields(logger.Fields{
				"symbol": order.Symbol,
				"code":   resp.Code,
				"msg":    resp.Msg,
			}).Warn("BingX order response carries no data")
		}
	}

	return responses, nil
}

// orderParams flattens an order request into the exchange's form fields.
// TP/SL legs are JSON-string-encoded sub-objects.
func orderParams(order model.OrderRequest) (map[string]interface{}, error) {
	params := map[string]interface{}{
		"symbol":       order.Symbol,
		"type":         order.Type,
		"side":         order.Side,
		"positionSide": order.PositionSide,
		"quantity":     order.Quantity,
		"recvWindow":   recvWindow,
	}
	if order.Price != 0 {
		params["price"] = order.Price
	}
	if order.ClientOrderID != "" {
		params["clientOrderID"] = order.ClientOrderID
	}
	if order.TakeProfit != nil {
		b, err := json.Marshal(order.TakeProfit)
		if err != nil {
			return nil, fmt.Errorf("marshal takeProfit leg: %w", err)
		}
		params["takeProfit"] = string(b)
	}
	if order.StopLoss != nil {
		b, err := json.Marshal(order.StopLoss)
		if err != nil {
			return nil, fmt.Errorf("marshal stopLoss leg: %w", err)
		}
		params["stopLoss"] = string(b)
	}
	return params, nil
}

// AccountBalance fetches the available USDT balance as reported by the
// exchange, kept as a decimal string to avoid float rounding.
func (e *OrderExecutor) AccountBalance() (decimal.Decimal, error) {
	resp, err := e.client.Get(balanceEndpoint, nil, true)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch balance: %w", err)
	}
	if !resp.Success {
		return decimal.Zero, fmt.Errorf("balance response carries no data (code=%d msg=%s)", resp.Code, resp.Msg)
	}

	balanceStr := gjson.GetBytes(resp.Data, `#(asset=="USDT").balance`).String()
	if balanceStr == "" {
		return decimal.Zero, fmt.Errorf("no USDT account in balance response")
	}

	balance, err := decimal.NewFromString(balanceStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse USDT balance %q: %w", balanceStr, err)
	}
	return balance, nil
}

// SubmitTestOrder sends a fixed probe payload to the order-test endpoint.
// Nothing is executed on the exchange side.
func (e *OrderExecutor) SubmitTestOrder() (*connectors.Response, error) {
	probe := model.OrderRequest{
		Symbol:       "BTC-USDT",
		Type:         model.OrderTypeMarket,
		Side:         model.OrderSideBuy,
		PositionSide: model.SideLong,
		Quantity:     5,
		TakeProfit: &model.OrderLeg{
			Type:        model.OrderTypeTakeProfitMarket,
			StopPrice:   31968,
			Price:       31968,
			WorkingType: model.WorkingTypeMarkPrice,
		},
		StopLoss: &model.OrderLeg{
			Type:        model.OrderTypeStopMarket,
			StopPrice:   30000,
			Price:       30000,
			WorkingType: model.WorkingTypeMarkPrice,
		},
	}

	params, err := orderParams(probe)
	if err != nil {
		return nil, err
	}
	return e.client.Post(orderTestEndpoint, params, true)
}

// CheckAccountBalance is the startup gate: it requires a strictly
// positive USDT balance and a reachable order-test endpoint before the
// server accepts webhooks.
func (e *OrderExecutor) CheckAccountBalance() error {
	fail := func(err error) error {
		return fmt.Errorf("something failed, check your credentials or make sure your account has enough funds to trade: %w", err)
	}

	balance, err := e.AccountBalance()
	if err != nil {
		return fail(err)
	}
	if !balance.GreaterThan(decimal.Zero) {
		return fail(fmt.Errorf("USDT balance %s is not positive", balance))
	}

	logger.WithField("balance", balance.String()).Info("USDT balance check passed")

	resp, err := e.SubmitTestOrder()
	if err != nil {
		return fail(err)
	}
	if resp.Success {
		logger.Info("Order test successful")
	} else {
		// The probe reaching the exchange is enough to start; a rejected
		// test order is reported but not fatal.
		logger.WithFields(logger.Fields{
			"code": resp.Code,
			"msg":  resp.Msg,
		}).Error("Order test failed")
	}

	return nil
}
