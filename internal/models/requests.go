package models

// CartAddRequest represents a request to add a product to the cart.
// An omitted quantity defaults to 1.
type CartAddRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"omitempty,gt=0"`
}

// CartUpdateRequest represents a request to change a cart item's quantity
type CartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}
