package models

import (
	"errors"
	"strings"
	"time"
)

// ProductType represents the kind of purchasable unit attached to an event
type ProductType string

const (
	ProductTicket         ProductType = "ticket"
	ProductMerchandise    ProductType = "merchandise"
	ProductAddon          ProductType = "addon"
	ProductVendorSpot     ProductType = "vendor_spot"
	ProductVolunteerShift ProductType = "volunteer_shift"
)

// ValidProductTypes lists every accepted product type
var ValidProductTypes = []ProductType{
	ProductTicket,
	ProductMerchandise,
	ProductAddon,
	ProductVendorSpot,
	ProductVolunteerShift,
}

// Product represents a purchasable unit for an event (ticket, merchandise,
// addon, vendor spot or volunteer shift)
type Product struct {
	ID          int         `json:"id" db:"id"`
	EventID     int         `json:"event_id" db:"event_id"`
	Type        ProductType `json:"type" db:"type"`
	Name        string      `json:"name" db:"name"`
	Description string      `json:"description" db:"description"`
	Price       int         `json:"price" db:"price"` // Price in cents
	Quantity    *int        `json:"quantity" db:"quantity"` // nil = unlimited
	Sold        int         `json:"sold" db:"sold"`
	Active      bool        `json:"active" db:"active"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// ProductCreateRequest represents the data needed to create a product
type ProductCreateRequest struct {
	EventID     int         `json:"event_id" validate:"required,gt=0"`
	Type        ProductType `json:"type" validate:"required"`
	Name        string      `json:"name" validate:"required,max=100"`
	Description string      `json:"description" validate:"max=1000"`
	Price       int         `json:"price" validate:"gte=0"`
	Quantity    *int        `json:"quantity" validate:"omitempty,gt=0"`
}

// ProductUpdateRequest represents the data that can be updated for a product
type ProductUpdateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	Price       int    `json:"price" validate:"gte=0"`
	Quantity    *int   `json:"quantity" validate:"omitempty,gt=0"`
	Active      bool   `json:"active"`
}

// Validate validates product creation data
func (req *ProductCreateRequest) Validate() error {
	if req.EventID <= 0 {
		return errors.New("event id is required")
	}

	if !req.Type.IsValid() {
		return errors.New("invalid product type")
	}

	if err := validateProductName(req.Name); err != nil {
		return err
	}

	if err := validateProductPrice(req.Price); err != nil {
		return err
	}

	if err := validateProductQuantity(req.Quantity); err != nil {
		return err
	}

	return validateProductDescription(req.Description)
}

// Validate validates product update data
func (req *ProductUpdateRequest) Validate() error {
	if err := validateProductName(req.Name); err != nil {
		return err
	}

	if err := validateProductPrice(req.Price); err != nil {
		return err
	}

	if err := validateProductQuantity(req.Quantity); err != nil {
		return err
	}

	return validateProductDescription(req.Description)
}

// RequiresRegistration returns true for product types that need a
// supplementary registration form before checkout
func (pt ProductType) RequiresRegistration() bool {
	return pt == ProductVendorSpot || pt == ProductVolunteerShift
}

// IsValid returns true if the product type is one of the accepted values
func (pt ProductType) IsValid() bool {
	switch pt {
	case ProductTicket, ProductMerchandise, ProductAddon, ProductVendorSpot, ProductVolunteerShift:
		return true
	default:
		return false
	}
}

// Validate validates the product data
func (p *Product) Validate() error {
	if !p.Type.IsValid() {
		return errors.New("invalid product type")
	}

	if err := validateProductName(p.Name); err != nil {
		return err
	}

	if err := validateProductPrice(p.Price); err != nil {
		return err
	}

	if err := validateProductQuantity(p.Quantity); err != nil {
		return err
	}

	return validateProductDescription(p.Description)
}

// validateProductName validates a product name
func validateProductName(name string) error {
	if name == "" {
		return errors.New("product name is required")
	}

	if len(name) > 100 {
		return errors.New("product name must be less than 100 characters")
	}

	if strings.TrimSpace(name) == "" {
		return errors.New("product name cannot be only whitespace")
	}

	return nil
}

// validateProductPrice validates a product price
func validateProductPrice(price int) error {
	if price < 0 {
		return errors.New("product price cannot be negative")
	}

	// Maximum price of $10,000 (1,000,000 cents)
	if price > 1000000 {
		return errors.New("product price cannot exceed $10,000")
	}

	return nil
}

// validateProductQuantity validates a product quantity (nil = unlimited)
func validateProductQuantity(quantity *int) error {
	if quantity == nil {
		return nil
	}

	if *quantity <= 0 {
		return errors.New("product quantity must be greater than 0")
	}

	if *quantity > 100000 {
		return errors.New("product quantity cannot exceed 100,000")
	}

	return nil
}

// validateProductDescription validates a product description
func validateProductDescription(description string) error {
	if len(description) > 1000 {
		return errors.New("product description must be less than 1000 characters")
	}

	return nil
}

// IsUnlimited returns true when no stock cap is set
func (p *Product) IsUnlimited() bool {
	return p.Quantity == nil
}

// IsAvailable returns true if the product can currently be purchased
func (p *Product) IsAvailable() bool {
	if !p.Active {
		return false
	}
	if p.Quantity == nil {
		return true
	}
	return p.Sold < *p.Quantity
}

// IsSoldOut returns true if a capped product has no remaining stock
func (p *Product) IsSoldOut() bool {
	return p.Quantity != nil && p.Sold >= *p.Quantity
}

// Available returns the remaining purchasable count; -1 means unlimited
func (p *Product) Available() int {
	if p.Quantity == nil {
		return -1
	}

	available := *p.Quantity - p.Sold
	if available < 0 {
		return 0
	}
	return available
}

// HasStockFor returns true if the requested quantity can be fulfilled
func (p *Product) HasStockFor(quantity int) bool {
	if quantity <= 0 {
		return false
	}
	if p.Quantity == nil {
		return true
	}
	return p.Sold+quantity <= *p.Quantity
}

// PriceInDollars returns the price converted from cents to dollars
func (p *Product) PriceInDollars() float64 {
	return float64(p.Price) / 100.0
}
