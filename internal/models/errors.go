package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrRegistrationPending  = errors.New("registration still pending")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrUnauthorized         = errors.New("unauthorized access")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrDuplicateEntry       = errors.New("duplicate entry")
	ErrInsufficientStock    = errors.New("insufficient product stock")
)
