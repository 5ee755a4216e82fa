package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// ProductRepository interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error)
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetByEvent(ctx context.Context, eventID int, activeOnly bool) ([]*models.Product, error)
	Update(ctx context.Context, id int, req *models.ProductUpdateRequest) (*models.Product, error)
	Delete(ctx context.Context, id int) error
	CountSoldByEvent(ctx context.Context, eventID int) (map[models.ProductType]int, error)
}

// ProductEventRepository is the slice of the event store the product
// service needs for ownership checks
type ProductEventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

// ProductService handles product-related business logic
type ProductService struct {
	productRepo ProductRepository
	eventRepo   ProductEventRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service
func NewProductService(productRepo ProductRepository, eventRepo ProductEventRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		eventRepo:   eventRepo,
		logger:      logger,
	}
}

// CreateProduct adds a purchasable product to an event owned by the user
func (s *ProductService) CreateProduct(ctx context.Context, user *models.User, req *models.ProductCreateRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	event, err := s.authorizeProductEvent(ctx, user, req.EventID)
	if err != nil {
		return nil, err
	}

	if !event.CanBeEdited() {
		return nil, fmt.Errorf("products cannot be added to cancelled events")
	}

	product, err := s.productRepo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int("product_id", product.ID).
		Int("event_id", product.EventID).
		Str("type", string(product.Type)).
		Msg("product created")

	return product, nil
}

// UpdateProduct updates a product's editable fields, including the
// active flag. The sold counter is never writable from here.
func (s *ProductService) UpdateProduct(ctx context.Context, user *models.User, productID int, req *models.ProductUpdateRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeProductEvent(ctx, user, product.EventID); err != nil {
		return nil, err
	}

	if req.Quantity != nil && *req.Quantity < product.Sold {
		return nil, fmt.Errorf("%w: quantity cannot be lower than the %d units already sold", models.ErrInvalidInput, product.Sold)
	}

	updated, err := s.productRepo.Update(ctx, productID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return updated, nil
}

// DeactivateProduct stops new sales of a product without touching
// existing orders
func (s *ProductService) DeactivateProduct(ctx context.Context, user *models.User, productID int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizeProductEvent(ctx, user, product.EventID); err != nil {
		return nil, err
	}

	if !product.Active {
		return product, nil
	}

	req := &models.ProductUpdateRequest{
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Active:      false,
	}

	updated, err := s.productRepo.Update(ctx, productID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate product: %w", err)
	}

	s.logger.Info().Int("product_id", productID).Msg("product deactivated")
	return updated, nil
}

// DeleteProduct removes a product that has no sales yet. Products that
// already sold units can only be deactivated.
func (s *ProductService) DeleteProduct(ctx context.Context, user *models.User, productID int) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}

	if _, err := s.authorizeProductEvent(ctx, user, product.EventID); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return err
	}

	return nil
}

// GetProduct retrieves a product by id
func (s *ProductService) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, productID)
}

// GetPurchasable returns a product that can currently be added to a
// cart. Inactive products and products of unpublished events are
// reported as not found rather than leaked.
func (s *ProductService) GetPurchasable(ctx context.Context, productID int) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if !product.Active {
		return nil, fmt.Errorf("%w: product is not on sale", models.ErrProductNotFound)
	}

	event, err := s.eventRepo.GetByID(ctx, product.EventID)
	if err != nil {
		return nil, err
	}

	if !event.IsPublished() {
		return nil, fmt.Errorf("%w: product is not on sale", models.ErrProductNotFound)
	}

	return product, nil
}

// ListPublicByEvent lists the active products shown on a public event
// page
func (s *ProductService) ListPublicByEvent(ctx context.Context, eventID int) ([]*models.Product, error) {
	products, err := s.productRepo.GetByEvent(ctx, eventID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListByEvent lists every product of an event, inactive included, for
// the owning organizer's management view
func (s *ProductService) ListByEvent(ctx context.Context, user *models.User, eventID int) ([]*models.Product, error) {
	if _, err := s.authorizeProductEvent(ctx, user, eventID); err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetByEvent(ctx, eventID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// SoldCountsByEvent returns units sold per product type for an event's
// dashboard
func (s *ProductService) SoldCountsByEvent(ctx context.Context, user *models.User, eventID int) (map[models.ProductType]int, error) {
	if _, err := s.authorizeProductEvent(ctx, user, eventID); err != nil {
		return nil, err
	}

	counts, err := s.productRepo.CountSoldByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold products: %w", err)
	}
	return counts, nil
}

// authorizeProductEvent loads the owning event and checks the user may
// manage its products
func (s *ProductService) authorizeProductEvent(ctx context.Context, user *models.User, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() && event.OrganizerID != user.ID {
		return nil, fmt.Errorf("%w: event belongs to another organizer", models.ErrUnauthorized)
	}

	return event, nil
}
