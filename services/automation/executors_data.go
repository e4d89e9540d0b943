package automation

import (
	"context"
	"fmt"
)

// FilterExecutor handles the "filter" kind: it keeps only the input
// payloads carrying the configured field.
type FilterExecutor struct{}

func (e *FilterExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	field := configString(node, "field", "signal")

	kept := make([]map[string]any, 0, len(inputs))
	for _, payload := range inputs {
		if _, ok := payload[field]; ok {
			kept = append(kept, payload)
		}
	}

	return &Result{
		Payload: map[string]any{
			"items":       kept,
			"field":       field,
			"inputCount":  len(inputs),
			"outputCount": len(kept),
		},
		DisplayText: fmt.Sprintf("Kept %d of %d payloads carrying %q", len(kept), len(inputs), field),
	}, nil
}

// TransformExecutor handles the "transform" kind: it projects each input
// payload down to the configured fields, or merges everything when no
// fields are configured.
type TransformExecutor struct{}

func (e *TransformExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	fields := configFields(node)

	if len(fields) == 0 {
		merged := map[string]any{}
		for _, payload := range inputs {
			for k, v := range payload {
				merged[k] = v
			}
		}
		return &Result{
			Payload: map[string]any{
				"merged": merged,
				"count":  len(inputs),
			},
			DisplayText: fmt.Sprintf("Merged %d payloads into %d fields", len(inputs), len(merged)),
		}, nil
	}

	items := make([]map[string]any, 0, len(inputs))
	for _, payload := range inputs {
		projected := map[string]any{}
		for _, f := range fields {
			if v, ok := payload[f]; ok {
				projected[f] = v
			}
		}
		items = append(items, projected)
	}

	return &Result{
		Payload: map[string]any{
			"items":  items,
			"fields": fields,
			"count":  len(items),
		},
		DisplayText: fmt.Sprintf("Projected %d payloads to fields %v", len(items), fields),
	}, nil
}

// AggregateExecutor handles the "aggregate" kind: it merges all inputs into
// one payload and averages their price fields.
type AggregateExecutor struct{}

func (e *AggregateExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	merged := map[string]any{}
	var sum float64
	priced := 0
	for _, payload := range inputs {
		for k, v := range payload {
			merged[k] = v
		}
		if p, ok := priceField(payload); ok {
			sum += p
			priced++
		}
	}

	payload := map[string]any{
		"merged": merged,
		"count":  len(inputs),
	}
	text := fmt.Sprintf("Aggregated %d payloads", len(inputs))
	if priced > 0 {
		avg := sum / float64(priced)
		payload["avgPrice"] = formatPrice(avg)
		text = fmt.Sprintf("Aggregated %d payloads, avg price %s", len(inputs), formatPrice(avg))
	}

	return &Result{Payload: payload, DisplayText: text}, nil
}

func configFields(node Node) []string {
	raw, ok := node.Config["fields"].([]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			fields = append(fields, s)
		}
	}
	return fields
}
