// Package webhook handles asynchronous notifications to registered webhook
// URLs when a high-risk assessment is produced.
//
// Notifications are sent in a goroutine so they never block the HTTP
// response. Failed deliveries are logged but not retried (a production
// system would use a persistent queue with exponential backoff).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"financefirst/risk-api/internal/domain"
	"financefirst/risk-api/internal/store"
)

// Notifier sends webhook payloads to all registered, active endpoints.
type Notifier struct {
	store  store.EvaluationStore
	client *http.Client
}

// New creates a Notifier with a sensible default HTTP client timeout.
func New(s store.EvaluationStore) *Notifier {
	return &Notifier{
		store: s,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// NotifyAsync fires webhook calls in the background for the given
// evaluation. Every active webhook whose score threshold is met gets a
// delivery.
func (n *Notifier) NotifyAsync(eval *domain.Evaluation) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hooks, err := n.store.ListWebhooks(ctx)
	if err != nil {
		slog.Error("webhook: failed to list subscriptions", "error", err)
		return
	}
	for _, wh := range hooks {
		if wh.Active && eval.Assessment.OverallScore >= wh.Threshold {
			go n.send(wh, eval)
		}
	}
}

// send delivers a single webhook call and logs the outcome.
func (n *Notifier) send(wh *domain.WebhookConfig, eval *domain.Evaluation) {
	payload := domain.WebhookPayload{
		Event:       "high_risk_assessment",
		TriggeredAt: time.Now().UTC(),
		Evaluation:  *eval,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("webhook: failed to marshal payload", "webhook_id", wh.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		slog.Error("webhook: failed to build request", "webhook_id", wh.ID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-FinanceFirst-Event", "high_risk_assessment")

	resp, err := n.client.Do(req)
	if err != nil {
		slog.Warn("webhook: delivery failed", "webhook_id", wh.ID, "url", wh.URL, "error", err)
		return
	}
	defer resp.Body.Close()

	slog.Info("webhook: delivered",
		"webhook_id", wh.ID,
		"url", wh.URL,
		"status", resp.StatusCode,
		"evaluation_id", eval.ID,
		"risk_score", eval.Assessment.OverallScore,
	)
}
