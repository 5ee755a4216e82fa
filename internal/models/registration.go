package models

import (
	"time"
)

// RegistrationKind distinguishes vendor and volunteer registrations
type RegistrationKind string

const (
	RegistrationVendor    RegistrationKind = "vendor"
	RegistrationVolunteer RegistrationKind = "volunteer"
)

// RegistrationRecordStatus represents the lifecycle of a saved registration
type RegistrationRecordStatus string

const (
	RegistrationRecordPending   RegistrationRecordStatus = "pending"
	RegistrationRecordConfirmed RegistrationRecordStatus = "confirmed"
	RegistrationRecordCancelled RegistrationRecordStatus = "cancelled"
)

// Registration is the persisted vendor or volunteer profile captured for
// one cart item. It is saved pending while the cart is open and confirmed
// when the order is paid; the cart item id links the two.
type Registration struct {
	ID         int                      `json:"id" db:"id"`
	UserID     int                      `json:"user_id" db:"user_id"`
	EventID    int                      `json:"event_id" db:"event_id"`
	ProductID  int                      `json:"product_id" db:"product_id"`
	CartItemID string                   `json:"cart_item_id" db:"cart_item_id"`
	Kind       RegistrationKind         `json:"kind" db:"kind"`
	Data       map[string]string        `json:"data" db:"data"`
	Status     RegistrationRecordStatus `json:"status" db:"status"`
	OrderID    *int                     `json:"order_id,omitempty" db:"order_id"`
	CreatedAt  time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time                `json:"updated_at" db:"updated_at"`
}

// VendorRegistrationRequest is the vendor profile form payload
type VendorRegistrationRequest struct {
	BusinessName    string `json:"business_name" validate:"required,max=200"`
	ContactName     string `json:"contact_name" validate:"required,max=200"`
	ContactEmail    string `json:"contact_email" validate:"required,email,max=255"`
	ContactPhone    string `json:"contact_phone" validate:"required,max=30"`
	ProductCategory string `json:"product_category" validate:"required,max=100"`
	Description     string `json:"description" validate:"max=2000"`
	SpaceSize       string `json:"space_size" validate:"max=100"`
	NeedsPower      bool   `json:"needs_power"`
	NeedsWater      bool   `json:"needs_water"`
}

// VolunteerRegistrationRequest is the volunteer profile form payload
type VolunteerRegistrationRequest struct {
	FullName              string `json:"full_name" validate:"required,max=200"`
	Email                 string `json:"email" validate:"required,email,max=255"`
	Phone                 string `json:"phone" validate:"required,max=30"`
	EmergencyContactName  string `json:"emergency_contact_name" validate:"required,max=200"`
	EmergencyContactPhone string `json:"emergency_contact_phone" validate:"required,max=30"`
	ShirtSize             string `json:"shirt_size" validate:"omitempty,oneof=XS S M L XL XXL"`
	Availability          string `json:"availability" validate:"max=500"`
	Notes                 string `json:"notes" validate:"max=2000"`
}

// ToData flattens the vendor form into the opaque payload stored on the
// cart item and in the registrations table
func (r *VendorRegistrationRequest) ToData() map[string]string {
	data := map[string]string{
		"business_name":    r.BusinessName,
		"contact_name":     r.ContactName,
		"contact_email":    r.ContactEmail,
		"contact_phone":    r.ContactPhone,
		"product_category": r.ProductCategory,
		"description":      r.Description,
		"space_size":       r.SpaceSize,
		"needs_power":      boolString(r.NeedsPower),
		"needs_water":      boolString(r.NeedsWater),
	}
	return data
}

// ToData flattens the volunteer form into the opaque payload stored on
// the cart item and in the registrations table
func (r *VolunteerRegistrationRequest) ToData() map[string]string {
	return map[string]string{
		"full_name":               r.FullName,
		"email":                   r.Email,
		"phone":                   r.Phone,
		"emergency_contact_name":  r.EmergencyContactName,
		"emergency_contact_phone": r.EmergencyContactPhone,
		"shirt_size":              r.ShirtSize,
		"availability":            r.Availability,
		"notes":                   r.Notes,
	}
}

func boolString(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// Kind maps a product type to its registration kind; ok is false for
// product types that take no registration
func (pt ProductType) Kind() (RegistrationKind, bool) {
	switch pt {
	case ProductVendorSpot:
		return RegistrationVendor, true
	case ProductVolunteerShift:
		return RegistrationVolunteer, true
	default:
		return "", false
	}
}

// IsConfirmed returns true once the linked order has been paid
func (r *Registration) IsConfirmed() bool {
	return r.Status == RegistrationRecordConfirmed
}

// IsPending returns true while the registration's cart has not checked out
func (r *Registration) IsPending() bool {
	return r.Status == RegistrationRecordPending
}
