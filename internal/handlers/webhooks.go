package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// maxWebhookBody caps webhook payloads, matching the processor's own
// recommended limit
const maxWebhookBody = 65536

// WebhookProcessor is the slice of the order service the webhook
// endpoint needs
type WebhookProcessor interface {
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// WebhookHandler receives payment processor event deliveries
type WebhookHandler struct {
	processor WebhookProcessor
	logger    zerolog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(processor WebhookProcessor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger,
	}
}

// HandleStripe verifies and processes one event delivery. A bad
// signature gets a 400 and is never retried; any other failure gets a
// 500 so the processor redelivers.
func (h *WebhookHandler) HandleStripe(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read payload")
		return
	}

	err = h.processor.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	switch {
	case errors.Is(err, services.ErrWebhookSignature):
		h.logger.Warn().Err(err).Msg("webhook signature rejected")
		respondError(w, http.StatusBadRequest, "invalid signature")
	case err != nil:
		h.logger.Error().Err(err).Msg("webhook processing failed")
		respondError(w, http.StatusInternalServerError, "internal server error")
	default:
		w.WriteHeader(http.StatusOK)
	}
}
