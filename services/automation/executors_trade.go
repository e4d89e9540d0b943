package automation

import (
	"context"
	"fmt"
)

// bullishSignals and bearishSignals are the categorical values that qualify
// an upstream payload for entry/exit counting.
var bullishSignals = map[string]bool{
	SignalOversold: true,
	TrendBullish:   true,
	"BUY":          true,
}

var bearishSignals = map[string]bool{
	SignalOverbought: true,
	TrendBearish:     true,
	"SELL":           true,
}

// StopLossExecutor handles the "stop_loss" kind: an offset below the
// nearest predecessor's price, either percentage or absolute per
// config "type".
type StopLossExecutor struct{}

func (e *StopLossExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	entry := nearestPrice(inputs)
	offsetType := configString(node, "type", "percent")
	value := configFloat(node, "value", 2)

	stop := entry - value
	if offsetType == "percent" {
		stop = entry * (1 - value/100)
	}

	return &Result{
		Payload: map[string]any{
			"stopPrice":  formatPrice(stop),
			"entryPrice": formatPrice(entry),
			"type":       offsetType,
			"value":      value,
		},
		DisplayText: fmt.Sprintf("Stop loss %s (entry %s, %s %.2f)", formatPrice(stop), formatPrice(entry), offsetType, value),
	}, nil
}

// TakeProfitExecutor handles the "take_profit" kind: the mirror of
// stop_loss, offsetting above the entry price.
type TakeProfitExecutor struct{}

func (e *TakeProfitExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	entry := nearestPrice(inputs)
	offsetType := configString(node, "type", "percent")
	value := configFloat(node, "value", 4)

	target := entry + value
	if offsetType == "percent" {
		target = entry * (1 + value/100)
	}

	return &Result{
		Payload: map[string]any{
			"targetPrice": formatPrice(target),
			"entryPrice":  formatPrice(entry),
			"type":        offsetType,
			"value":       value,
		},
		DisplayText: fmt.Sprintf("Take profit %s (entry %s, %s %.2f)", formatPrice(target), formatPrice(entry), offsetType, value),
	}, nil
}

// EntryExecutor handles the "entry" kind: it counts qualifying bullish
// signals among its inputs and enters only when the configured minimum
// (default 2) is met.
type EntryExecutor struct{}

func (e *EntryExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	required := configInt(node, "minBullish", 2)
	count := countSignals(inputs, bullishSignals)

	action := "WAIT"
	reason := fmt.Sprintf("only %d of %d required bullish signals", count, required)
	if count >= required {
		action = "ENTER_LONG"
		reason = fmt.Sprintf("%d bullish signals met the minimum of %d", count, required)
	}

	return &Result{
		Payload: map[string]any{
			"action":         action,
			"bullishSignals": count,
			"required":       required,
			"reason":         reason,
		},
		DisplayText: fmt.Sprintf("%s - %s", action, reason),
	}, nil
}

// ExitExecutor handles the "exit" kind: the bearish counterpart of entry.
type ExitExecutor struct{}

func (e *ExitExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	required := configInt(node, "minBearish", 2)
	count := countSignals(inputs, bearishSignals)

	action := "HOLD"
	reason := fmt.Sprintf("only %d of %d required bearish signals", count, required)
	if count >= required {
		action = "EXIT"
		reason = fmt.Sprintf("%d bearish signals met the minimum of %d", count, required)
	}

	return &Result{
		Payload: map[string]any{
			"action":         action,
			"bearishSignals": count,
			"required":       required,
			"reason":         reason,
		},
		DisplayText: fmt.Sprintf("%s - %s", action, reason),
	}, nil
}

// countSignals counts inputs whose "signal" or "trend" field carries a
// qualifying categorical value.
func countSignals(inputs []map[string]any, qualifying map[string]bool) int {
	count := 0
	for _, payload := range inputs {
		for _, key := range []string{"signal", "trend"} {
			if s, ok := payload[key].(string); ok && qualifying[s] {
				count++
				break
			}
		}
	}
	return count
}
