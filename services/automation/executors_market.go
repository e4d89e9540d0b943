package automation

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Categorical signals emitted by indicator nodes and consumed by
// entry/exit nodes.
const (
	SignalOverbought = "OVERBOUGHT"
	SignalOversold   = "OVERSOLD"
	SignalNeutral    = "NEUTRAL"
	TrendBullish     = "BULLISH"
	TrendBearish     = "BEARISH"
)

// SourceExecutor handles the "source" kind. It ignores its inputs and
// synthesizes a market-like snapshot that seeds the rest of the graph.
type SourceExecutor struct {
	rng *rand.Rand
}

func (e *SourceExecutor) Execute(_ context.Context, node Node, _ []map[string]any) (*Result, error) {
	symbol := configString(node, "symbol", "BTCUSDT")
	base := configFloat(node, "basePrice", defaultPrice)

	// Drift within +-2% of the configured base so repeated runs stay in a
	// plausible band.
	price := base * (1 + (e.rng.Float64()-0.5)*0.04)
	open := base * (1 + (e.rng.Float64()-0.5)*0.04)
	spread := base * 0.01 * e.rng.Float64()
	high := max(price, open) + spread
	low := min(price, open) - spread
	volume := round2(500 + e.rng.Float64()*1500)

	payload := map[string]any{
		"symbol":    symbol,
		"price":     formatPrice(price),
		"open":      formatPrice(open),
		"high":      formatPrice(high),
		"low":       formatPrice(low),
		"close":     formatPrice(price),
		"volume":    volume,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return &Result{
		Payload:     payload,
		DisplayText: fmt.Sprintf("%s @ %s (vol %.2f)", symbol, payload["price"], volume),
	}, nil
}

// IndicatorExecutor handles the "indicator" kind. The indicator variant is
// chosen by config ("rsi", "macd" or "sma"); each variant derives a
// categorical signal or trend from configured thresholds.
type IndicatorExecutor struct {
	rng *rand.Rand
}

func (e *IndicatorExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	price := nearestPrice(inputs)
	period := configInt(node, "period", 14)

	switch configString(node, "indicator", "rsi") {
	case "macd":
		return e.macd(node, price, period), nil
	case "sma":
		return e.sma(node, price, period), nil
	default:
		return e.rsi(node, price, period), nil
	}
}

func (e *IndicatorExecutor) rsi(node Node, price float64, period int) *Result {
	overbought := configFloat(node, "overbought", 70)
	oversold := configFloat(node, "oversold", 30)
	value := round2(e.rng.Float64() * 100)

	signal := SignalNeutral
	switch {
	case value >= overbought:
		signal = SignalOverbought
	case value <= oversold:
		signal = SignalOversold
	}

	return &Result{
		Payload: map[string]any{
			"indicator": "rsi",
			"period":    period,
			"value":     value,
			"signal":    signal,
			"price":     formatPrice(price),
		},
		DisplayText: fmt.Sprintf("RSI(%d) = %.2f -> %s", period, value, signal),
	}
}

func (e *IndicatorExecutor) macd(node Node, price float64, period int) *Result {
	macdLine := round2((e.rng.Float64() - 0.5) * price * 0.02)
	signalLine := round2((e.rng.Float64() - 0.5) * price * 0.02)
	histogram := round2(macdLine - signalLine)

	trend := TrendBearish
	if macdLine > signalLine {
		trend = TrendBullish
	}

	return &Result{
		Payload: map[string]any{
			"indicator":  "macd",
			"period":     period,
			"macd":       macdLine,
			"signalLine": signalLine,
			"histogram":  histogram,
			"signal":     trend,
			"price":      formatPrice(price),
		},
		DisplayText: fmt.Sprintf("MACD %.2f / signal %.2f -> %s", macdLine, signalLine, trend),
	}
}

func (e *IndicatorExecutor) sma(node Node, price float64, period int) *Result {
	average := round2(price * (1 + (e.rng.Float64()-0.5)*0.02))

	trend := TrendBearish
	if price > average {
		trend = TrendBullish
	}

	return &Result{
		Payload: map[string]any{
			"indicator": "sma",
			"period":    period,
			"value":     average,
			"signal":    trend,
			"price":     formatPrice(price),
		},
		DisplayText: fmt.Sprintf("SMA(%d) = %.2f vs price %.2f -> %s", period, average, price, trend),
	}
}
