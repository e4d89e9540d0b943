package automation

import (
	"context"
	"fmt"
	"math/rand"
)

// RiskCheckExecutor handles the "risk_check" kind: a boolean gate comparing
// the portfolio's (simulated) drawdown against a configured maximum.
type RiskCheckExecutor struct {
	rng *rand.Rand
}

func (e *RiskCheckExecutor) Execute(_ context.Context, node Node, _ []map[string]any) (*Result, error) {
	maxDrawdown := configFloat(node, "maxDrawdown", 10)
	drawdown := round2(e.rng.Float64() * 15)
	passed := drawdown <= maxDrawdown

	return &Result{
		Payload: map[string]any{
			"passed":      passed,
			"drawdown":    drawdown,
			"maxDrawdown": maxDrawdown,
		},
		DisplayText: fmt.Sprintf("Drawdown %.2f%% vs max %.2f%% -> passed=%t", drawdown, maxDrawdown, passed),
	}, nil
}

// PositionSizeExecutor handles the "position_size" kind: it sizes a
// position from capital and risk percentage, gating on a configured
// maximum size.
type PositionSizeExecutor struct{}

func (e *PositionSizeExecutor) Execute(_ context.Context, node Node, _ []map[string]any) (*Result, error) {
	capital := configFloat(node, "capital", 10000)
	riskPercent := configFloat(node, "riskPercent", 1)
	maxSize := configFloat(node, "maxSize", 1000)

	size := round2(capital * riskPercent / 100)
	valid := size <= maxSize

	return &Result{
		Payload: map[string]any{
			"valid":       valid,
			"size":        size,
			"maxSize":     maxSize,
			"capital":     capital,
			"riskPercent": riskPercent,
		},
		DisplayText: fmt.Sprintf("Position size %.2f (max %.2f) -> valid=%t", size, maxSize, valid),
	}, nil
}

// ValidatorExecutor handles the "validator" kind: a boolean gate on a
// (simulated) confidence score against a configured minimum.
type ValidatorExecutor struct {
	rng *rand.Rand
}

func (e *ValidatorExecutor) Execute(_ context.Context, node Node, _ []map[string]any) (*Result, error) {
	minConfidence := configFloat(node, "minConfidence", 0.6)
	confidence := round2(e.rng.Float64())
	valid := confidence >= minConfidence

	return &Result{
		Payload: map[string]any{
			"valid":         valid,
			"confidence":    confidence,
			"minConfidence": minConfidence,
		},
		DisplayText: fmt.Sprintf("Confidence %.2f vs min %.2f -> valid=%t", confidence, minConfidence, valid),
	}, nil
}

// ConditionExecutor handles the "condition" kind: a numeric range gate on
// the nearest predecessor's price.
type ConditionExecutor struct{}

func (e *ConditionExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	value := nearestPrice(inputs)
	lower := configFloat(node, "min", 0)
	upper := configFloat(node, "max", 1e12)
	passed := value >= lower && value <= upper

	return &Result{
		Payload: map[string]any{
			"passed": passed,
			"value":  value,
			"min":    lower,
			"max":    upper,
		},
		DisplayText: fmt.Sprintf("Value %.2f in [%.2f, %.2f] -> passed=%t", value, lower, upper, passed),
	}, nil
}
