package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// OrderService is the slice of the order service the handler needs
type OrderService interface {
	GetOrder(ctx context.Context, user *models.User, orderID int) (*services.OrderDetail, error)
	ListUserOrders(ctx context.Context, userID, page, pageSize int) (*services.OrderListResponse, error)
	CancelOrder(ctx context.Context, user *models.User, orderID int) error
}

// OrderHandler serves a buyer's order history
type OrderHandler struct {
	orders OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		logger: logger,
	}
}

// List returns the session user's orders, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.orders.ListUserOrders(r.Context(), currentUser(r).ID, queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get returns one order with its items and issued tickets
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	detail, err := h.orders.GetOrder(r.Context(), currentUser(r), orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Cancel abandons a pending order before payment
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.orders.CancelOrder(r.Context(), currentUser(r), orderID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
