package controller

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alertexecutor/src/connectors"
	"alertexecutor/src/model"
)

type postCall struct {
	path string
	data map[string]interface{}
}

type mockClient struct {
	posts     []postCall
	postResps []*connectors.Response
	postErrs  []error

	getResp *connectors.Response
	getErr  error
	gets    int
}

func (m *mockClient) Get(path string, params map[string]interface{}, private bool) (*connectors.Response, error) {
	m.gets++
	return m.getResp, m.getErr
}

func (m *mockClient) Post(path string, data map[string]interface{}, private bool) (*connectors.Response, error) {
	i := len(m.posts)
	m.posts = append(m.posts, postCall{path: path, data: data})
	if i < len(m.postErrs) && m.postErrs[i] != nil {
		return nil, m.postErrs[i]
	}
	if i < len(m.postResps) {
		return m.postResps[i], nil
	}
	return &connectors.Response{Success: true, Data: json.RawMessage(`{}`)}, nil
}

func twoTierAlert() *model.Alert {
	return &model.Alert{
		Symbol:          "BTC-USDT",
		Side:            model.SideLong,
		Entry:           "50000",
		Winrate:         "60%",
		Strategy:        "breaker",
		BeTargetTrigger: "1",
		Stop:            "48000",
		Size:            "1000",
		Tps: []model.TakeProfitTier{
			{Price: "51000", Investment: "40%"},
			{Price: "52000", Investment: "60%"},
		},
	}
}

func TestExecuteAlertSubmitsPrimaryThenSecondaries(t *testing.T) {
	client := &mockClient{}
	exec := NewOrderExecutor(client)

	responses, err := exec.ExecuteAlert(twoTierAlert())
	require.NoError(t, err)
	require.Len(t, responses, 2)
	require.Len(t, client.posts, 2)

	primary := client.posts[0]
	assert.Equal(t, orderEndpoint, primary.path)
	assert.Equal(t, "MARKET", primary.data["type"])
	assert.Equal(t, "BUY", primary.data["side"])
	assert.Equal(t, "LONG", primary.data["positionSide"])
	assert.Equal(t, "BTC-USDT", primary.data["symbol"])
	assert.Equal(t, recvWindow, primary.data["recvWindow"])
	assert.NotEmpty(t, primary.data["clientOrderID"])

	// The promoted leg is embedded as a JSON string.
	tp, ok := primary.data["takeProfit"].(string)
	require.True(t, ok)
	var tpLeg model.OrderLeg
	require.NoError(t, json.Unmarshal([]byte(tp), &tpLeg))
	assert.Equal(t, model.OrderTypeTakeProfitMarket, tpLeg.Type)
	assert.Equal(t, 52000.0, tpLeg.Price)

	sl, ok := primary.data["stopLoss"].(string)
	require.True(t, ok)
	var slLeg model.OrderLeg
	require.NoError(t, json.Unmarshal([]byte(sl), &slLeg))
	assert.Equal(t, model.OrderTypeStopMarket, slLeg.Type)
	assert.Equal(t, 48000.0, slLeg.StopPrice)

	secondary := client.posts[1]
	assert.Equal(t, orderEndpoint, secondary.path)
	assert.Equal(t, "LIMIT", secondary.data["type"])
	assert.Equal(t, 51000.0, secondary.data["price"])
	assert.Nil(t, secondary.data["takeProfit"])
	assert.Nil(t, secondary.data["stopLoss"])
}

func TestSubmitPlanAbortsOnFirstFailure(t *testing.T) {
	client := &mockClient{
		postErrs: []error{nil, fmt.Errorf("exchange rejected")},
	}
	exec := NewOrderExecutor(client)

	alert := twoTierAlert()
	alert.Tps = []model.TakeProfitTier{
		{Price: "51000", Investment: "30%"},
		{Price: "52000", Investment: "30%"},
		{Price: "53000", Investment: "40%"},
	}

	responses, err := exec.ExecuteAlert(alert)
	require.Error(t, err)

	// Primary succeeded, first secondary failed, second secondary never
	// attempted. No compensation for the live primary order.
	assert.Len(t, responses, 1)
	assert.Len(t, client.posts, 2)
}

func TestExecuteAlertPlanningFailureMakesNoCalls(t *testing.T) {
	client := &mockClient{}
	exec := NewOrderExecutor(client)

	alert := twoTierAlert()
	alert.Entry = "not-a-number"

	_, err := exec.ExecuteAlert(alert)
	require.Error(t, err)
	assert.Empty(t, client.posts)
}

func TestAccountBalance(t *testing.T) {
	client := &mockClient{
		getResp: &connectors.Response{
			Success: true,
			Data:    json.RawMessage(`[{"asset":"BTC","balance":"0.5"},{"asset":"USDT","balance":"1234.56"}]`),
		},
	}
	exec := NewOrderExecutor(client)

	balance, err := exec.AccountBalance()
	require.NoError(t, err)
	assert.Equal(t, "1234.56", balance.String())
}

func TestAccountBalanceNoUSDTAccount(t *testing.T) {
	client := &mockClient{
		getResp: &connectors.Response{
			Success: true,
			Data:    json.RawMessage(`[{"asset":"BTC","balance":"0.5"}]`),
		},
	}
	exec := NewOrderExecutor(client)

	_, err := exec.AccountBalance()
	assert.Error(t, err)
}

func TestCheckAccountBalancePositiveBalanceAndProbe(t *testing.T) {
	client := &mockClient{
		getResp: &connectors.Response{
			Success: true,
			Data:    json.RawMessage(`[{"asset":"USDT","balance":"100"}]`),
		},
	}
	exec := NewOrderExecutor(client)

	require.NoError(t, exec.CheckAccountBalance())
	require.Len(t, client.posts, 1)
	assert.Equal(t, orderTestEndpoint, client.posts[0].path)
	assert.Equal(t, "BTC-USDT", client.posts[0].data["symbol"])
}

func TestCheckAccountBalanceZeroBalanceFails(t *testing.T) {
	client := &mockClient{
		getResp: &connectors.Response{
			Success: true,
			Data:    json.RawMessage(`[{"asset":"USDT","balance":"0"}]`),
		},
	}
	exec := NewOrderExecutor(client)

	assert.Error(t, exec.CheckAccountBalance())
	assert.Empty(t, client.posts, "order test must not run with a zero balance")
}

func TestCheckAccountBalanceRejectedProbeIsNotFatal(t *testing.T) {
	client := &mockClient{
		getResp: &connectors.Response{
			Success: true,
			Data:    json.RawMessage(`[{"asset":"USDT","balance":"100"}]`),
		},
		postResps: []*connectors.Response{
			{Success: false, Code: 80001, Msg: "rejected"},
		},
	}
	exec := NewOrderExecutor(client)

	assert.NoError(t, exec.CheckAccountBalance())
}

func TestCheckAccountBalanceTransportErrorIsFatal(t *testing.T) {
	client := &mockClient{getErr: fmt.Errorf("connection refused")}
	exec := NewOrderExecutor(client)

	assert.Error(t, exec.CheckAccountBalance())
}
