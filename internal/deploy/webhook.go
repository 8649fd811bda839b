// Package deploy posts deployment requests to the downstream webhook.
package deploy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/dwsmith1983/tagwatch/internal/breaker"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Webhook HTTP delivery defaults.
const (
	webhookTimeout = 10 * time.Second
	maxErrorBody   = 64 << 10
)

// ErrWebhookNotConfigured is a configuration error: no webhook URL is set.
var ErrWebhookNotConfigured = errors.New("DEPLOY_WEBHOOK_URL is not configured")

// HTTPError reports a non-2xx webhook response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("webhook returned status %d: %s", e.StatusCode, e.Body)
}

// Webhook triggers deployments by POSTing to a URL. One attempt per call.
type Webhook struct {
	url        string
	repository string
	format     types.WebhookFormat
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
	now        func() time.Time
}

// NewWebhook creates a deploy trigger. An empty url is accepted; every
// Trigger call then fails with ErrWebhookNotConfigured.
func NewWebhook(url, repository string, format types.WebhookFormat, timeout time.Duration) *Webhook {
	if timeout <= 0 {
		timeout = webhookTimeout
	}
	logger := slog.Default()
	return &Webhook{
		url:        url,
		repository: repository,
		format:     format,
		client:     &http.Client{Timeout: timeout},
		breaker:    breaker.New("deploy-webhook", breaker.DefaultConfig(), logger),
		logger:     logger,
		now:        time.Now,
	}
}

// SetLogger overrides the default logger.
func (w *Webhook) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// SetClock overrides the payload timestamp source.
func (w *Webhook) SetClock(now func() time.Time) {
	if now != nil {
		w.now = now
	}
}

// Trigger posts a deploy request for marker.
func (w *Webhook) Trigger(ctx context.Context, marker types.VersionMarker, kind types.TriggerKind) error {
	if w.url == "" {
		return ErrWebhookNotConfigured
	}

	now := w.now()
	body, contentType, err := encode(w.format, newPayload(marker, kind, w.repository, now), now)
	if err != nil {
		return fmt.Errorf("encoding webhook payload: %w", err)
	}

	_, err = w.breaker.Execute(func() (interface{}, error) {
		return nil, w.post(ctx, body, contentType)
	})
	if err != nil {
		return err
	}
	w.logger.Info("deploy webhook accepted", "tag", marker, "trigger", kind)
	return nil
}

func (w *Webhook) post(ctx context.Context, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook POST failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
