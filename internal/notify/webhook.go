package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"dabmon/internal/alerts"
	"dabmon/internal/config"
)

// webhookPayload is the JSON body sent to the webhook endpoint.
type webhookPayload struct {
	Event     string       `json:"event"`
	Alert     webhookAlert `json:"alert"`
	Timestamp time.Time    `json:"timestamp"`
}

// webhookAlert carries the alert fields on the wire.
type webhookAlert struct {
	ID              int64     `json:"id"`
	Metric          string    `json:"metric"`
	Severity        string    `json:"severity"`
	Kind            string    `json:"kind"`
	Value           float64   `json:"value"`
	Threshold       *float64  `json:"threshold,omitempty"`
	PctChange       *float64  `json:"pct_change,omitempty"`
	WindowHours     *float64  `json:"window_hours,omitempty"`
	RaisedAt        time.Time `json:"raised_at"`
	Message         string    `json:"message,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

// WebhookNotifier posts alerts as JSON to a configured endpoint, retrying
// transient failures with exponential backoff within the delivery timeout.
type WebhookNotifier struct {
	url        string
	maxRetries int
	client     *http.Client
}

// NewWebhookNotifier creates a webhook notifier from configuration.
func NewWebhookNotifier(cfg config.WebhookConfig) *WebhookNotifier {
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &WebhookNotifier{
		url:        cfg.URL,
		maxRetries: retries,
		client:     &http.Client{},
	}
}

// Name implements Notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// Deliver implements Notifier.
func (w *WebhookNotifier) Deliver(ctx context.Context, a alerts.Alert) error {
	payload := webhookPayload{
		Event:     "alert_raised",
		Alert:     toWebhookAlert(a),
		Timestamp: time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = w.post(ctx, body)
		if lastErr == nil {
			return nil
		}
	}

	return fmt.Errorf("webhook delivery failed after %d attempts: %w", w.maxRetries+1, lastErr)
}

func (w *WebhookNotifier) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func toWebhookAlert(a alerts.Alert) webhookAlert {
	wa := webhookAlert{
		ID:              a.ID,
		Metric:          a.Metric,
		Severity:        a.Severity.String(),
		Kind:            a.Kind.String(),
		Value:           a.Value,
		Threshold:       a.Threshold,
		RaisedAt:        a.Timestamp,
		Message:         a.Message,
		Recommendations: a.Recommendations,
	}
	if a.Trend != nil {
		pct := a.Trend.PctChange
		hours := a.Trend.WindowHours
		wa.PctChange = &pct
		wa.WindowHours = &hours
	}
	return wa
}
