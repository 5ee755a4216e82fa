package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// CheckoutService is the slice of the checkout service the handler
// needs
type CheckoutService interface {
	StartCheckout(ctx context.Context, user *models.User, cart *models.Cart) (*services.CheckoutStartResult, error)
	ConfirmCheckout(ctx context.Context, user *models.User, sessionID string) (*services.CheckoutConfirmation, error)
}

// CheckoutHandler turns the session cart into an order and a payment
// page redirect
type CheckoutHandler struct {
	checkout CheckoutService
	cart     sessionCart
	logger   zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout CheckoutService, store sessions.Store, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		cart:     sessionCart{store: store},
		logger:   logger,
	}
}

// Start creates a pending order for the cart and returns the hosted
// payment page URL. A cart with an unresolved registration gets a 409
// pointing at the outstanding form. The cart itself stays as it is, so
// backing out of the payment page loses nothing.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	_, cart := h.cart.load(r)

	result, err := h.checkout.StartCheckout(r.Context(), currentUser(r), cart)
	if err != nil {
		if checkoutConflict(w, err) {
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Confirm reports order state when the buyer returns from the payment
// page. Once the session reads paid the cart is spent and gets cleared.
func (h *CheckoutHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	confirmation, err := h.checkout.ConfirmCheckout(r.Context(), currentUser(r), r.URL.Query().Get("session_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if confirmation.Paid {
		session, cart := h.cart.load(r)
		if !cart.IsEmpty() {
			cart.Clear()
			if err := h.cart.save(w, r, session, cart); err != nil {
				// The stale cart expires on its own; the confirmation
				// still stands
				h.logger.Warn().Err(err).Msg("failed to clear cart after paid checkout")
			}
		}
	}

	respondJSON(w, http.StatusOK, confirmation)
}
