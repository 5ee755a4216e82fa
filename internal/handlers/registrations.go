package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// RegistrationService is the slice of the registration service the
// handler needs
type RegistrationService interface {
	Prefill(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, kind models.RegistrationKind) (*services.RegistrationPrefill, error)
	SubmitVendor(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, req *models.VendorRegistrationRequest) (*services.RegistrationResult, error)
	SubmitVolunteer(ctx context.Context, user *models.User, cart *models.Cart, cartItemID string, req *models.VolunteerRegistrationRequest) (*services.RegistrationResult, error)
	ListEventRegistrations(ctx context.Context, user *models.User, eventID int, kind models.RegistrationKind, status models.RegistrationRecordStatus) ([]*models.Registration, error)
}

// RegistrationHandler serves the vendor and volunteer registration
// forms that gate checkout, plus the organizer's roster view
type RegistrationHandler struct {
	registrations RegistrationService
	cart          sessionCart
	logger        zerolog.Logger
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrations RegistrationService, store sessions.Store, logger zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		cart:          sessionCart{store: store},
		logger:        logger,
	}
}

// PrefillVendor returns the vendor form payload for a cart item
func (h *RegistrationHandler) PrefillVendor(w http.ResponseWriter, r *http.Request) {
	h.prefill(w, r, models.RegistrationVendor)
}

// PrefillVolunteer returns the volunteer form payload for a cart item
func (h *RegistrationHandler) PrefillVolunteer(w http.ResponseWriter, r *http.Request) {
	h.prefill(w, r, models.RegistrationVolunteer)
}

func (h *RegistrationHandler) prefill(w http.ResponseWriter, r *http.Request, kind models.RegistrationKind) {
	_, cart := h.cart.load(r)

	prefill, err := h.registrations.Prefill(r.Context(), currentUser(r), cart, chi.URLParam(r, "itemID"), kind)
	if err != nil {
		respondRegistrationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, prefill)
}

// SubmitVendor saves a vendor profile and advances the checkout flow.
// On failure the cart session is left as it was so the form can be
// retried.
func (h *RegistrationHandler) SubmitVendor(w http.ResponseWriter, r *http.Request) {
	req := &models.VendorRegistrationRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.submit(w, r, func(ctx context.Context, user *models.User, cart *models.Cart, itemID string) (*services.RegistrationResult, error) {
		return h.registrations.SubmitVendor(ctx, user, cart, itemID, req)
	})
}

// SubmitVolunteer saves a volunteer profile and advances the checkout
// flow
func (h *RegistrationHandler) SubmitVolunteer(w http.ResponseWriter, r *http.Request) {
	req := &models.VolunteerRegistrationRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.submit(w, r, func(ctx context.Context, user *models.User, cart *models.Cart, itemID string) (*services.RegistrationResult, error) {
		return h.registrations.SubmitVolunteer(ctx, user, cart, itemID, req)
	})
}

func (h *RegistrationHandler) submit(w http.ResponseWriter, r *http.Request, op func(context.Context, *models.User, *models.Cart, string) (*services.RegistrationResult, error)) {
	session, cart := h.cart.load(r)

	result, err := op(r.Context(), currentUser(r), cart, chi.URLParam(r, "itemID"))
	if err != nil {
		respondRegistrationError(w, err)
		return
	}

	// The service advanced the cart item; persist that before reporting
	// the next step
	if err := h.cart.save(w, r, session, cart); err != nil {
		h.logger.Error().Err(err).Msg("failed to save cart session")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListForEvent returns an event's registration roster for its
// organizer, optionally filtered by kind and status
func (h *RegistrationHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	kind := models.RegistrationKind(r.URL.Query().Get("kind"))
	status := models.RegistrationRecordStatus(r.URL.Query().Get("status"))

	regs, err := h.registrations.ListEventRegistrations(r.Context(), currentUser(r), eventID, kind, status)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"registrations": regs})
}
