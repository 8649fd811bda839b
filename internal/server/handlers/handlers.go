// Package handlers implements HTTP request handlers for the tagwatch API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dwsmith1983/tagwatch/internal/deploy"
	"github.com/dwsmith1983/tagwatch/internal/engine"
	"github.com/dwsmith1983/tagwatch/pkg/types"
)

// Response messages.
const (
	MsgFetchFailed     = "Failed to fetch latest release"
	MsgTriggerFailed   = "Deployment trigger failed"
	MsgManualFailed    = "Manual trigger failed"
	MsgStoreError      = "State store error"
	MsgConfigError     = "Configuration error"
	MsgStatusFailed    = "Failed to get status"
	MsgInternalError   = "Internal server error"
	MsgNoUpdate        = "No new release detected"
	MsgTriggered       = "New release detected, deployment triggered"
	MsgCheckSkipped    = "Check already in progress"
	MsgManualTriggered = "Manual deployment triggered"
)

// Service is the engine surface used by the handlers.
type Service interface {
	CheckForUpdates(ctx context.Context) (*types.CheckResult, error)
	ManualTrigger(ctx context.Context) (*types.ManualResult, error)
	Status(ctx context.Context) (*types.StatusSnapshot, error)
}

// Handlers contains all HTTP handler dependencies.
type Handlers struct {
	svc    Service
	logger *slog.Logger
}

// New creates a new Handlers instance.
func New(svc Service) *Handlers {
	return &Handlers{svc: svc, logger: slog.Default()}
}

// SetLogger overrides the default logger.
func (h *Handlers) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// ErrorBody is the uniform failure response.
type ErrorBody struct {
	Error   string  `json:"error"`
	Details string  `json:"details"`
	OldTag  *string `json:"oldTag,omitempty"`
	NewTag  *string `json:"newTag,omitempty"`
	Tag     *string `json:"tag,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes a 500 with the uniform error body.
func WriteError(w http.ResponseWriter, body ErrorBody) {
	writeJSON(w, http.StatusInternalServerError, body)
}

// classify picks the public message for err. fallback is used for trigger
// failures, which read differently per route.
func classify(err error, fallback string) string {
	var storeErr *engine.StoreError
	switch {
	case errors.As(err, &storeErr):
		return MsgStoreError
	case errors.Is(err, engine.ErrFetchFailed):
		return MsgFetchFailed
	case errors.Is(err, deploy.ErrWebhookNotConfigured):
		return MsgConfigError
	case errors.Is(err, engine.ErrTriggerFailed):
		return fallback
	default:
		return MsgInternalError
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, msg string, err error, body ErrorBody) {
	h.logger.ErrorContext(r.Context(), msg, "path", r.URL.Path, "error", err)
	body.Error = msg
	body.Details = err.Error()
	WriteError(w, body)
}
