package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// CartProductSource looks up products eligible for purchase
type CartProductSource interface {
	GetPurchasable(ctx context.Context, productID int) (*models.Product, error)
}

// CartHandler manages the session-backed shopping cart
type CartHandler struct {
	products CartProductSource
	cart     sessionCart
	logger   zerolog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(products CartProductSource, store sessions.Store, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		products: products,
		cart:     sessionCart{store: store},
		logger:   logger,
	}
}

// Get returns the cart with its total and the next action path
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, cart := h.cart.load(r)
	respondJSON(w, http.StatusOK, newCartView(cart))
}

// AddItem puts a product in the cart. Vendor spots and volunteer shifts
// enter with a pending registration, which next_path points at.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	req := &models.CartAddRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.products.GetPurchasable(r.Context(), req.ProductID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, cart := h.cart.load(r)
	item, err := cart.AddItem(product, req.Quantity)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.cart.save(w, r, session, cart); err != nil {
		h.logger.Error().Err(err).Msg("failed to save cart session")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Debug().
		Int("product_id", product.ID).
		Int("quantity", req.Quantity).
		Str("cart_item_id", item.ID).
		Msg("item added to cart")

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"item":      item,
		"next_path": cart.NextRegistrationPath(),
	})
}

// UpdateItem changes the quantity of a cart item
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	req := &models.CartUpdateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, cart := h.cart.load(r)
	if err := cart.UpdateQuantity(chi.URLParam(r, "itemID"), req.Quantity); err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.cart.save(w, r, session, cart); err != nil {
		h.logger.Error().Err(err).Msg("failed to save cart session")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, newCartView(cart))
}

// RemoveItem deletes a cart item. Removing an id that is already gone
// still succeeds.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, cart := h.cart.load(r)
	cart.RemoveItem(chi.URLParam(r, "itemID"))

	if err := h.cart.save(w, r, session, cart); err != nil {
		h.logger.Error().Err(err).Msg("failed to save cart session")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, newCartView(cart))
}

// Clear empties the cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, cart := h.cart.load(r)
	cart.Clear()

	if err := h.cart.save(w, r, session, cart); err != nil {
		h.logger.Error().Err(err).Msg("failed to save cart session")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
