package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// ConnectService is the slice of the payout onboarding service the
// handler needs
type ConnectService interface {
	StartOnboarding(ctx context.Context, user *models.User) (*services.OnboardingLink, error)
	Status(ctx context.Context, user *models.User) (*services.ConnectStatus, error)
}

// ConnectHandler serves the organizer's payout account onboarding.
// The same onboarding call backs both the initial connect and the
// fresh-link retry when setup stalled.
type ConnectHandler struct {
	connect ConnectService
	logger  zerolog.Logger
}

// NewConnectHandler creates a new connect handler
func NewConnectHandler(connect ConnectService, logger zerolog.Logger) *ConnectHandler {
	return &ConnectHandler{
		connect: connect,
		logger:  logger,
	}
}

// Onboard creates the connected account if needed and returns a fresh
// onboarding link
func (h *ConnectHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	link, err := h.connect.StartOnboarding(r.Context(), currentUser(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, link)
}

// Status reports the connected account's live capability flags, polled
// by the payout settings page
func (h *ConnectHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.connect.Status(r.Context(), currentUser(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}
