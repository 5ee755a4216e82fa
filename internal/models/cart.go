package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus tracks whether a cart item still needs a
// supplementary registration form before checkout
type RegistrationStatus string

const (
	RegistrationNotRequired RegistrationStatus = "not_required"
	RegistrationPending     RegistrationStatus = "pending"
	RegistrationComplete    RegistrationStatus = "complete"
)

// Registration form routes served by the frontend. The cart hands these
// back so handlers can steer the user through outstanding forms.
const (
	VendorRegistrationPath    = "/vendor-registration/"
	VolunteerRegistrationPath = "/volunteer-registration/"
	CheckoutPath              = "/checkout"
)

// CartDuration is how long an idle cart survives before it expires
const CartDuration = 30 * time.Minute

// Cart represents a shopping cart, stored JSON-encoded in the user session.
// Items keep insertion order; registration forms are resolved one at a
// time, earliest added first.
type Cart struct {
	Items     []CartItem `json:"items"`
	ExpiresAt int64      `json:"expires_at"` // Unix timestamp
}

// CartItem represents one purchasable selection in the cart, carrying a
// snapshot of the product at add time plus its registration state.
type CartItem struct {
	ID                 string             `json:"id"`
	ProductID          int                `json:"product_id"`
	ProductType        ProductType        `json:"product_type"`
	EventID            int                `json:"event_id"`
	Name               string             `json:"name"`
	Price              int                `json:"price"` // unit price in cents
	Quantity           int                `json:"quantity"`
	RegistrationStatus RegistrationStatus `json:"registration_status"`
	RegistrationData   map[string]string  `json:"registration_data,omitempty"`
}

// NewCart returns an empty cart with a fresh expiry window
func NewCart() *Cart {
	return &Cart{
		Items:     []CartItem{},
		ExpiresAt: time.Now().Add(CartDuration).Unix(),
	}
}

// AddItem appends a new cart item for the given product. Vendor spots and
// volunteer shifts start with a pending registration; everything else
// starts not_required. The only rejected input is a non-positive quantity.
func (c *Cart) AddItem(product *Product, quantity int) (*CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	status := RegistrationNotRequired
	if product.Type.RequiresRegistration() {
		status = RegistrationPending
	}

	item := CartItem{
		ID:                 uuid.New().String(),
		ProductID:          product.ID,
		ProductType:        product.Type,
		EventID:            product.EventID,
		Name:               product.Name,
		Price:              product.Price,
		Quantity:           quantity,
		RegistrationStatus: status,
	}

	c.Items = append(c.Items, item)
	c.Touch()
	return &c.Items[len(c.Items)-1], nil
}

// Item returns the cart item with the given id, or nil if it is no longer
// present. Callers must treat nil as "item missing" and redirect away; a
// deep-linked registration page can outlive its cart entry.
func (c *Cart) Item(id string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem deletes the item with the given id. Unknown ids are ignored.
func (c *Cart) RemoveItem(id string) {
	for i := range c.Items {
		if c.Items[i].ID == id {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.Touch()
			return
		}
	}
}

// UpdateQuantity changes the requested count for an item
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	item := c.Item(id)
	if item == nil {
		return ErrCartItemNotFound
	}

	item.Quantity = quantity
	c.Touch()
	return nil
}

// SetRegistrationStatus transitions an item's registration state and
// attaches the captured form payload. Repeated completions are
// last-write-wins on the payload. An unknown id is a deliberate no-op so
// a stale callback cannot corrupt cart state.
func (c *Cart) SetRegistrationStatus(id string, status RegistrationStatus, data map[string]string) {
	item := c.Item(id)
	if item == nil {
		return
	}

	item.RegistrationStatus = status
	item.RegistrationData = data
	c.Touch()
}

// NeedsRegistration returns true if any item still has a pending
// registration form
func (c *Cart) NeedsRegistration() bool {
	for i := range c.Items {
		if c.Items[i].RegistrationStatus == RegistrationPending {
			return true
		}
	}
	return false
}

// NeedsRegistrationExcluding is NeedsRegistration ignoring one item,
// used right after that item's own form completed to decide the next
// step without re-counting it
func (c *Cart) NeedsRegistrationExcluding(id string) bool {
	for i := range c.Items {
		if c.Items[i].ID == id {
			continue
		}
		if c.Items[i].RegistrationStatus == RegistrationPending {
			return true
		}
	}
	return false
}

// NextRegistrationPath returns the form route for the earliest-added item
// still pending registration, or the checkout path when none remain
func (c *Cart) NextRegistrationPath() string {
	return c.NextRegistrationPathExcluding("")
}

// NextRegistrationPathExcluding is NextRegistrationPath ignoring one item.
// Items are scanned in insertion order, so multiple pending registrations
// resolve one at a time in the order they were added.
func (c *Cart) NextRegistrationPathExcluding(id string) string {
	for i := range c.Items {
		item := &c.Items[i]
		if item.ID == id || item.RegistrationStatus != RegistrationPending {
			continue
		}

		switch item.ProductType {
		case ProductVendorSpot:
			return VendorRegistrationPath + item.ID
		case ProductVolunteerShift:
			return VolunteerRegistrationPath + item.ID
		}
	}
	return CheckoutPath
}

// CompleteRegistration marks an item's registration complete, stores the
// form payload, and returns the next route in one step: the next pending
// item's form, or checkout when this was the last one. Completing an
// unknown id changes nothing and simply reports the current next route.
func (c *Cart) CompleteRegistration(id string, data map[string]string) string {
	c.SetRegistrationStatus(id, RegistrationComplete, data)
	return c.NextRegistrationPathExcluding(id)
}

// LatestRegistrationData returns the most recently completed payload for
// the given product type, used to pre-fill the next form of the same kind
func (c *Cart) LatestRegistrationData(productType ProductType) map[string]string {
	var data map[string]string
	for i := range c.Items {
		item := &c.Items[i]
		if item.ProductType == productType && item.RegistrationStatus == RegistrationComplete && item.RegistrationData != nil {
			data = item.RegistrationData
		}
	}
	return data
}

// ReadyForCheckout returns true when the cart has items and every one of
// them is either not_required or complete
func (c *Cart) ReadyForCheckout() bool {
	if len(c.Items) == 0 {
		return false
	}
	return !c.NeedsRegistration()
}

// TotalAmount returns the cart total in cents
func (c *Cart) TotalAmount() int {
	total := 0
	for i := range c.Items {
		total += c.Items[i].Price * c.Items[i].Quantity
	}
	return total
}

// IsEmpty returns true when the cart holds no items
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// IsExpired returns true once the cart's idle window has passed
func (c *Cart) IsExpired() bool {
	return c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt
}

// Touch refreshes the expiry window after a mutation
func (c *Cart) Touch() {
	c.ExpiresAt = time.Now().Add(CartDuration).Unix()
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.Touch()
}

// Subtotal returns the line total for this item in cents
func (ci *CartItem) Subtotal() int {
	return ci.Price * ci.Quantity
}

// RegistrationPath returns this item's own form route, or empty for
// product types without one
func (ci *CartItem) RegistrationPath() string {
	switch ci.ProductType {
	case ProductVendorSpot:
		return VendorRegistrationPath + ci.ID
	case ProductVolunteerShift:
		return VolunteerRegistrationPath + ci.ID
	}
	return ""
}
