// Package webhook handles asynchronous notifications to registered webhook URLs
// when a high-risk credit application is detected.
//
// Notifications are sent in a goroutine so they never block the HTTP response.
// Failed deliveries are logged but not retried (a production system would use
// a persistent queue with exponential backoff).
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agriflow/bnpl-api/internal/domain"
	"agriflow/bnpl-api/internal/metrics"
	"agriflow/bnpl-api/internal/store"
)

// Notifier sends webhook payloads to all registered, active endpoints.
type Notifier struct {
	hooks  *store.WebhookRepo
	log    *zap.Logger
	client *http.Client
}

// New creates a Notifier with the given delivery timeout.
func New(hooks *store.WebhookRepo, log *zap.Logger, timeout time.Duration) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		hooks: hooks,
		log:   log.Named("webhook"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NotifyAsync fires webhook calls in the background for the given decision.
// It checks every active webhook and triggers those whose PD threshold is met.
func (n *Notifier) NotifyAsync(d *domain.Decision) {
	hooks, err := n.hooks.ListActive()
	if err != nil {
		n.log.Error("list webhooks failed", zap.Error(err))
		return
	}
	for _, wh := range hooks {
		if d.Assessment.LatePaymentProb >= wh.PDThreshold {
			go n.send(wh, d)
		}
	}
}

// send delivers a single webhook call and logs the outcome.
func (n *Notifier) send(wh domain.WebhookConfig, d *domain.Decision) {
	payload := domain.WebhookPayload{
		Event:       "high_risk_application",
		TriggeredAt: time.Now().UTC(),
		Decision:    *d,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.log.Error("marshal payload failed", zap.String("webhook_id", wh.ID), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wh.URL, bytes.NewReader(body))
	if err != nil {
		n.log.Error("build request failed", zap.String("webhook_id", wh.ID), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Agriflow-Event", "high_risk_application")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		n.log.Warn("delivery failed",
			zap.String("webhook_id", wh.ID),
			zap.String("url", wh.URL),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
	n.log.Info("delivered",
		zap.String("webhook_id", wh.ID),
		zap.String("url", wh.URL),
		zap.Int("status", resp.StatusCode),
		zap.String("decision_id", d.ID),
		zap.Float64("late_payment_prob", d.Assessment.LatePaymentProb),
	)
}
