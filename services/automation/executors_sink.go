package automation

import (
	"context"
	"fmt"
	"time"
)

// Sink kinds represent side-effecting integrations. In this engine they
// never perform real I/O: each records a "would-have-called" payload so a
// graph stays safe to run repeatedly.

// NotificationExecutor handles the "notification" kind.
type NotificationExecutor struct{}

func (e *NotificationExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	channel := configString(node, "channel", "email")
	recipient := configString(node, "recipient", "trader@example.com")
	message := configString(node, "message", "Automation update")

	return &Result{
		Payload: map[string]any{
			"channel":   channel,
			"recipient": recipient,
			"message":   message,
			"wouldSend": true,
			"simulated": true,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
		DisplayText: fmt.Sprintf("Would notify %s via %s: %q", recipient, channel, message),
	}, nil
}

// WebhookExecutor handles the "webhook" kind.
type WebhookExecutor struct{}

func (e *WebhookExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	url := configString(node, "url", "https://hooks.example.com/automation")
	method := configString(node, "method", "POST")

	return &Result{
		Payload: map[string]any{
			"url":        url,
			"method":     method,
			"wouldCall":  true,
			"simulated":  true,
			"statusCode": 200,
			"bodyCount":  len(inputs),
		},
		DisplayText: fmt.Sprintf("Would %s %s with %d upstream payloads", method, url, len(inputs)),
	}, nil
}

// OutputExecutor handles the "output" kind: the terminal collector that
// exposes whatever reached it.
type OutputExecutor struct{}

func (e *OutputExecutor) Execute(_ context.Context, node Node, inputs []map[string]any) (*Result, error) {
	payload := map[string]any{
		"results": inputs,
		"count":   len(inputs),
	}
	return &Result{
		Payload:     payload,
		DisplayText: fmt.Sprintf("Collected %d upstream payloads", len(inputs)),
	}, nil
}
