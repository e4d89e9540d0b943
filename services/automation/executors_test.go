package automation

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRegistry(seed int64) Registry {
	return NewRegistry(rand.New(rand.NewSource(seed)))
}

func TestSource_SynthesizesMarketPayload(t *testing.T) {
	reg := seededRegistry(42)
	node := Node{ID: "src", Kind: "source", Config: map[string]any{"symbol": "ETHUSDT", "basePrice": 2000}}

	result, err := reg.Execute(context.Background(), node, nil)

	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", result.Payload["symbol"])
	for _, key := range []string{"price", "open", "high", "low", "close"} {
		s, ok := result.Payload[key].(string)
		require.True(t, ok, "%s must be a price string", key)
		_, parseErr := strconv.ParseFloat(s, 64)
		assert.NoError(t, parseErr, "%s must parse as a number", key)
	}
	assert.Contains(t, result.Payload, "volume")
	assert.Contains(t, result.Payload, "timestamp")
	assert.NotEmpty(t, result.DisplayText)
}

func TestSource_SeededRunsAreReproducible(t *testing.T) {
	node := Node{ID: "src", Kind: "source"}

	first, err := seededRegistry(7).Execute(context.Background(), node, nil)
	require.NoError(t, err)
	second, err := seededRegistry(7).Execute(context.Background(), node, nil)
	require.NoError(t, err)

	assert.Equal(t, first.Payload["price"], second.Payload["price"])
	assert.Equal(t, first.Payload["volume"], second.Payload["volume"])
}

func TestIndicator_RSIThresholdsForceSignal(t *testing.T) {
	reg := seededRegistry(1)

	oversold := Node{ID: "rsi", Kind: "indicator", Config: map[string]any{
		"indicator": "rsi", "oversold": 100, "overbought": 101,
	}}
	result, err := reg.Execute(context.Background(), oversold, []map[string]any{{"price": "100"}})
	require.NoError(t, err)
	assert.Equal(t, SignalOversold, result.Payload["signal"])

	overbought := Node{ID: "rsi", Kind: "indicator", Config: map[string]any{
		"indicator": "rsi", "overbought": 0,
	}}
	result, err = reg.Execute(context.Background(), overbought, nil)
	require.NoError(t, err)
	assert.Equal(t, SignalOverbought, result.Payload["signal"])
}

func TestIndicator_EmptyInputsUseDefaultPrice(t *testing.T) {
	reg := seededRegistry(3)
	node := Node{ID: "ind", Kind: "indicator"}

	result, err := reg.Execute(context.Background(), node, nil)

	require.NoError(t, err)
	assert.Equal(t, "100.00", result.Payload["price"])
	assert.Contains(t, []string{SignalOverbought, SignalOversold, SignalNeutral}, result.Payload["signal"])
}

func TestIndicator_MACDAndSMAEmitTrends(t *testing.T) {
	reg := seededRegistry(9)
	inputs := []map[string]any{{"price": "250"}}

	macd, err := reg.Execute(context.Background(), Node{ID: "m", Kind: "indicator", Config: map[string]any{"indicator": "macd"}}, inputs)
	require.NoError(t, err)
	assert.Contains(t, []string{TrendBullish, TrendBearish}, macd.Payload["signal"])
	assert.Contains(t, macd.Payload, "histogram")

	sma, err := reg.Execute(context.Background(), Node{ID: "s", Kind: "indicator", Config: map[string]any{"indicator": "sma", "period": 50}}, inputs)
	require.NoError(t, err)
	assert.Equal(t, 50, sma.Payload["period"])
	assert.Contains(t, []string{TrendBullish, TrendBearish}, sma.Payload["signal"])
}

func TestRiskCheck_GateAgainstMaxDrawdown(t *testing.T) {
	reg := seededRegistry(5)

	pass, err := reg.Execute(context.Background(), Node{ID: "r", Kind: "risk_check", Config: map[string]any{"maxDrawdown": 100}}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, pass.Payload["passed"])

	fail, err := reg.Execute(context.Background(), Node{ID: "r", Kind: "risk_check", Config: map[string]any{"maxDrawdown": -1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, fail.Payload["passed"])
	assert.Contains(t, fail.Payload, "drawdown")
}

func TestPositionSize_GateAgainstMaxSize(t *testing.T) {
	exec := &PositionSizeExecutor{}
	node := Node{ID: "p", Kind: "position_size", Config: map[string]any{"capital": 10000, "riskPercent": 1}}

	result, err := exec.Execute(context.Background(), node, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Payload["size"])
	assert.Equal(t, true, result.Payload["valid"])

	capped, err := exec.Execute(context.Background(), Node{ID: "p", Kind: "position_size", Config: map[string]any{"maxSize": 50}}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, capped.Payload["valid"])
}

func TestValidator_GateAgainstMinConfidence(t *testing.T) {
	reg := seededRegistry(11)

	pass, err := reg.Execute(context.Background(), Node{ID: "v", Kind: "validator", Config: map[string]any{"minConfidence": 0}}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, pass.Payload["valid"])

	fail, err := reg.Execute(context.Background(), Node{ID: "v", Kind: "validator", Config: map[string]any{"minConfidence": 1.1}}, nil)
	require.NoError(t, err)
	assert.Equal(t, false, fail.Payload["valid"])
	assert.Contains(t, fail.Payload, "confidence")
}

func TestCondition_NumericRangeGate(t *testing.T) {
	exec := &ConditionExecutor{}
	inputs := []map[string]any{{"price": "100"}}

	in, err := exec.Execute(context.Background(), Node{ID: "c", Kind: "condition", Config: map[string]any{"min": 50, "max": 150}}, inputs)
	require.NoError(t, err)
	assert.Equal(t, true, in.Payload["passed"])
	assert.Equal(t, 100.0, in.Payload["value"])

	out, err := exec.Execute(context.Background(), Node{ID: "c", Kind: "condition", Config: map[string]any{"min": 150}}, inputs)
	require.NoError(t, err)
	assert.Equal(t, false, out.Payload["passed"])
}

func TestFilter_KeepsPayloadsCarryingField(t *testing.T) {
	exec := &FilterExecutor{}
	inputs := []map[string]any{
		{"signal": SignalOversold},
		{"price": "100"},
	}

	result, err := exec.Execute(context.Background(), Node{ID: "f", Kind: "filter"}, inputs)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Payload["inputCount"])
	assert.Equal(t, 1, result.Payload["outputCount"])
}

func TestTransform_ProjectsConfiguredFields(t *testing.T) {
	exec := &TransformExecutor{}
	node := Node{ID: "t", Kind: "transform", Config: map[string]any{"fields": []any{"price", "signal"}}}
	inputs := []map[string]any{
		{"price": "100", "signal": SignalNeutral, "volume": 900.0},
	}

	result, err := exec.Execute(context.Background(), node, inputs)

	require.NoError(t, err)
	items, ok := result.Payload["items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, map[string]any{"price": "100", "signal": SignalNeutral}, items[0])
}

func TestAggregate_AveragesPrices(t *testing.T) {
	exec := &AggregateExecutor{}
	inputs := []map[string]any{
		{"price": "100"},
		{"price": "200"},
	}

	result, err := exec.Execute(context.Background(), Node{ID: "a", Kind: "aggregate"}, inputs)

	require.NoError(t, err)
	assert.Equal(t, "150.00", result.Payload["avgPrice"])
	assert.Equal(t, 2, result.Payload["count"])
}

func TestSinks_SimulateWithoutSideEffects(t *testing.T) {
	reg := seededRegistry(1)

	webhook, err := reg.Execute(context.Background(), Node{ID: "w", Kind: "webhook", Config: map[string]any{"url": "https://example.com/hook"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, webhook.Payload["wouldCall"])
	assert.Equal(t, true, webhook.Payload["simulated"])
	assert.Equal(t, 200, webhook.Payload["statusCode"])

	notify, err := reg.Execute(context.Background(), Node{ID: "n", Kind: "notification"}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, notify.Payload["wouldSend"])

	output, err := reg.Execute(context.Background(), Node{ID: "o", Kind: "output"}, []map[string]any{{"price": "100"}})
	require.NoError(t, err)
	assert.Equal(t, 1, output.Payload["count"])
}

func TestRegistry_UnknownKindFallsThrough(t *testing.T) {
	reg := seededRegistry(1)
	node := Node{ID: "x", Kind: "quantum_arbitrage"}

	result, err := reg.Execute(context.Background(), node, []map[string]any{{"price": "100"}})

	require.NoError(t, err)
	assert.Equal(t, true, result.Payload["passthrough"])
	assert.Equal(t, "quantum_arbitrage", result.Payload["kind"])
	assert.Equal(t, "100", result.Payload["price"])
}

func TestToFloat_CoercesStringsAndNumbers(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"98.25", 98.25, true},
		{42, 42, true},
		{int64(7), 7, true},
		{3.5, 3.5, true},
		{"not-a-number", 0, false},
		{nil, 0, false},
	}
	for _, tc := range cases {
		got, ok := toFloat(tc.in)
		assert.Equal(t, tc.ok, ok, "input %v", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %v", tc.in)
		}
	}
}
