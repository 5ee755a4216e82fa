package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// ProductService is the slice of the product service the handler needs
type ProductService interface {
	CreateProduct(ctx context.Context, user *models.User, req *models.ProductCreateRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, user *models.User, productID int, req *models.ProductUpdateRequest) (*models.Product, error)
	DeactivateProduct(ctx context.Context, user *models.User, productID int) (*models.Product, error)
	DeleteProduct(ctx context.Context, user *models.User, productID int) error
	GetProduct(ctx context.Context, productID int) (*models.Product, error)
	ListPublicByEvent(ctx context.Context, eventID int) ([]*models.Product, error)
	ListByEvent(ctx context.Context, user *models.User, eventID int) ([]*models.Product, error)
	SoldCountsByEvent(ctx context.Context, user *models.User, eventID int) (map[models.ProductType]int, error)
}

// PublicEventResolver resolves the slug in public product URLs
type PublicEventResolver interface {
	GetPublicEventBySlug(ctx context.Context, slug string, viewer *models.User) (*models.Event, error)
}

// ProductHandler serves product listings and the organizer's product
// management endpoints
type ProductHandler struct {
	products ProductService
	events   PublicEventResolver
	logger   zerolog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(products ProductService, events PublicEventResolver, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		events:   events,
		logger:   logger,
	}
}

// ListPublic returns an event's active products for the public event page
func (h *ProductHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetPublicEventBySlug(r.Context(), chi.URLParam(r, "slug"), currentUser(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	products, err := h.products.ListPublicByEvent(r.Context(), event.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// Create adds a product to one of the organizer's events
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := &models.ProductCreateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.CreateProduct(r.Context(), currentUser(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, product)
}

// Get returns one product by id
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.GetProduct(r.Context(), productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Update edits a product
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	req := &models.ProductUpdateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), currentUser(r), productID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Deactivate takes a product off sale without touching past orders
func (h *ProductHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.products.DeactivateProduct(r.Context(), currentUser(r), productID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// Delete removes a product that has never sold
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	productID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), currentUser(r), productID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListForEvent returns all of an event's products, inactive included,
// for the organizer's management view
func (h *ProductHandler) ListForEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	products, err := h.products.ListByEvent(r.Context(), currentUser(r), eventID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// SoldCounts returns units sold per product type for an event
func (h *ProductHandler) SoldCounts(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	counts, err := h.products.SoldCountsByEvent(r.Context(), currentUser(r), eventID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"sold": counts})
}
