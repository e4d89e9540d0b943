package automation

import (
	"context"
	"math"
	"math/rand"
	"strconv"
	"time"
)

// defaultPrice is assumed when no predecessor payload carries a usable
// price field.
const defaultPrice = 100.0

// Result is what a node's executor produces: the payload cached for
// downstream nodes plus a one-line human-readable summary.
type Result struct {
	Payload     map[string]any
	DisplayText string
}

// Executor computes a single node kind. Implementations must be total for
// well-formed config and must tolerate an empty input list; inputs are
// copies of upstream payloads in declaration order and must not be retained.
type Executor interface {
	Execute(ctx context.Context, node Node, inputs []map[string]any) (*Result, error)
}

// Registry maps node kinds to their executor implementation.
type Registry map[string]Executor

// NewRegistry creates a registry populated with all built-in node kinds.
// Simulated values are drawn from rng so callers can pin a seed; a nil rng
// gets a time-seeded source.
func NewRegistry(rng *rand.Rand) Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Registry{
		"source":        &SourceExecutor{rng: rng},
		"indicator":     &IndicatorExecutor{rng: rng},
		"stop_loss":     &StopLossExecutor{},
		"take_profit":   &TakeProfitExecutor{},
		"entry":         &EntryExecutor{},
		"exit":          &ExitExecutor{},
		"risk_check":    &RiskCheckExecutor{rng: rng},
		"position_size": &PositionSizeExecutor{},
		"validator":     &ValidatorExecutor{rng: rng},
		"condition":     &ConditionExecutor{},
		"filter":        &FilterExecutor{},
		"transform":     &TransformExecutor{},
		"aggregate":     &AggregateExecutor{},
		"notification":  &NotificationExecutor{},
		"webhook":       &WebhookExecutor{},
		"output":        &OutputExecutor{},
	}
}

// Execute dispatches the node to its kind's executor. Unknown kinds fall
// back to a pass-through result so unrecognized or future kinds never break
// a run.
func (r Registry) Execute(ctx context.Context, node Node, inputs []map[string]any) (*Result, error) {
	exec, ok := r[node.Kind]
	if !ok {
		exec = passthrough{}
	}
	return exec.Execute(ctx, node, inputs)
}

// toFloat coerces a payload or config value to float64. Prices cross the
// boundary as 2-decimal strings, so string parsing is part of the contract.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// formatPrice renders a price the way the boundary expects it: a string
// with exactly two decimals.
func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// priceField extracts a numeric field from a payload, checking "price"
// first and "close" as a fallback.
func priceField(payload map[string]any) (float64, bool) {
	for _, key := range []string{"price", "close"} {
		if v, ok := payload[key]; ok {
			if f, ok := toFloat(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// nearestPrice scans the inputs from the nearest (last-declared)
// predecessor backwards for a usable price, defaulting when none is found.
func nearestPrice(inputs []map[string]any) float64 {
	for i := len(inputs) - 1; i >= 0; i-- {
		if f, ok := priceField(inputs[i]); ok {
			return f
		}
	}
	return defaultPrice
}

func configString(node Node, key, def string) string {
	if v, ok := node.Config[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

func configFloat(node Node, key string, def float64) float64 {
	if v, ok := node.Config[key]; ok {
		if f, ok := toFloat(v); ok {
			return f
		}
	}
	return def
}

func configInt(node Node, key string, def int) int {
	if v, ok := node.Config[key]; ok {
		if f, ok := toFloat(v); ok {
			return int(f)
		}
	}
	return def
}

// round2 trims simulated values to two decimals so payloads stay legible.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// passthrough is the fallback for unregistered kinds: it echoes the nearest
// input payload so downstream nodes still see data flowing.
type passthrough struct{}

func (passthrough) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	payload := map[string]any{
		"kind":        node.Kind,
		"passthrough": true,
		"inputCount":  len(inputs),
	}
	if len(inputs) > 0 {
		for k, v := range inputs[len(inputs)-1] {
			if _, taken := payload[k]; !taken {
				payload[k] = v
			}
		}
	}
	return &Result{
		Payload:     payload,
		DisplayText: "Unrecognized kind '" + node.Kind + "' passed through unchanged",
	}, nil
}
