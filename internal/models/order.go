package models

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderFailed    OrderStatus = "failed"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

// Order represents a checkout in the system. It is created pending when
// the buyer is sent to the payment processor and marked paid by the
// webhook once the hosted checkout completes.
type Order struct {
	ID                int         `json:"id" db:"id"`
	UserID            int         `json:"user_id" db:"user_id"`
	EventID           int         `json:"event_id" db:"event_id"`
	OrderNumber       string      `json:"order_number" db:"order_number"`
	TotalAmount       int         `json:"total_amount" db:"total_amount"` // Amount in cents
	Currency          string      `json:"currency" db:"currency"`
	Status            OrderStatus `json:"status" db:"status"`
	CheckoutSessionID string      `json:"checkout_session_id" db:"checkout_session_id"`
	BillingEmail      string      `json:"billing_email" db:"billing_email"`
	BillingName       string      `json:"billing_name" db:"billing_name"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem is a line-item snapshot taken from the cart at checkout time,
// so later product edits never change what a buyer paid for.
type OrderItem struct {
	ID          int         `json:"id" db:"id"`
	OrderID     int         `json:"order_id" db:"order_id"`
	ProductID   int         `json:"product_id" db:"product_id"`
	ProductType ProductType `json:"product_type" db:"product_type"`
	CartItemID  string      `json:"cart_item_id" db:"cart_item_id"`
	Name        string      `json:"name" db:"name"`
	UnitPrice   int         `json:"unit_price" db:"unit_price"` // in cents
	Quantity    int         `json:"quantity" db:"quantity"`
	Subtotal    int         `json:"subtotal" db:"subtotal"` // in cents
}

// TicketStatus represents the status of an issued ticket
type TicketStatus string

const (
	TicketActive   TicketStatus = "active"
	TicketUsed     TicketStatus = "used"
	TicketRefunded TicketStatus = "refunded"
)

// Ticket represents an individual admission code issued per purchased
// ticket unit once the order is paid
type Ticket struct {
	ID          int          `json:"id" db:"id"`
	OrderID     int          `json:"order_id" db:"order_id"`
	OrderItemID int          `json:"order_item_id" db:"order_item_id"`
	Code        string       `json:"code" db:"code"`
	Status      TicketStatus `json:"status" db:"status"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

var (
	// Order number format: EVH-YYYYMMDD-XXXXXX (e.g., EVH-20250101-123456)
	orderNumberRegex = regexp.MustCompile(`^EVH-\d{8}-\d{6}$`)
	// Email validation regex for orders
	orderEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// Validate validates the order data
func (o *Order) Validate() error {
	if err := o.validateOrderNumber(); err != nil {
		return err
	}

	if err := o.validateTotalAmount(); err != nil {
		return err
	}

	if err := o.validateStatus(); err != nil {
		return err
	}

	return o.validateBillingInfo()
}

// validateOrderNumber validates the order number
func (o *Order) validateOrderNumber() error {
	if o.OrderNumber == "" {
		return errors.New("order number is required")
	}

	if !orderNumberRegex.MatchString(o.OrderNumber) {
		return errors.New("order number format is invalid")
	}

	return nil
}

// validateTotalAmount validates the order total amount
func (o *Order) validateTotalAmount() error {
	return validateOrderTotalAmount(o.TotalAmount)
}

// validateStatus validates the order status
func (o *Order) validateStatus() error {
	return validateOrderStatus(o.Status)
}

// validateBillingInfo validates the order billing information
func (o *Order) validateBillingInfo() error {
	return validateOrderBillingInfo(o.BillingEmail, o.BillingName)
}

// validateOrderTotalAmount validates an order total amount
func validateOrderTotalAmount(totalAmount int) error {
	if totalAmount < 0 {
		return errors.New("total amount cannot be negative")
	}

	// Maximum order amount of $100,000 (10,000,000 cents)
	if totalAmount > 10000000 {
		return errors.New("total amount cannot exceed $100,000")
	}

	return nil
}

// validateOrderStatus validates an order status
func validateOrderStatus(status OrderStatus) error {
	switch status {
	case OrderPending, OrderPaid, OrderFailed, OrderCancelled, OrderRefunded:
		return nil
	default:
		return errors.New("invalid order status")
	}
}

// validateOrderBillingInfo validates order billing information
func validateOrderBillingInfo(billingEmail, billingName string) error {
	if billingEmail == "" {
		return errors.New("billing email is required")
	}

	if billingName == "" {
		return errors.New("billing name is required")
	}

	if len(billingEmail) > 255 {
		return errors.New("billing email must be less than 255 characters")
	}

	if len(billingName) > 255 {
		return errors.New("billing name must be less than 255 characters")
	}

	// Validate email format
	if !orderEmailRegex.MatchString(billingEmail) {
		return errors.New("billing email format is invalid")
	}

	if strings.TrimSpace(billingName) == "" {
		return errors.New("billing name cannot be only whitespace")
	}

	return nil
}

// GenerateOrderNumber generates a unique order number
func GenerateOrderNumber() string {
	now := time.Now()
	dateStr := now.Format("20060102")

	// Generate a 6-digit random number using crypto/rand for better uniqueness
	max := big.NewInt(1000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fallback to timestamp-based generation if crypto/rand fails
		timestamp := now.UnixNano()
		randomPart := timestamp % 1000000
		return fmt.Sprintf("EVH-%s-%06d", dateStr, randomPart)
	}

	return fmt.Sprintf("EVH-%s-%06d", dateStr, randomNum.Int64())
}

// GenerateTicketCode generates a unique admission code for one ticket
func GenerateTicketCode() string {
	max := big.NewInt(1000000000)
	randomNum, err := rand.Int(rand.Reader, max)
	if err != nil {
		return fmt.Sprintf("TKT-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("TKT-%09d", randomNum.Int64())
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsPaid returns true if the order has been paid
func (o *Order) IsPaid() bool {
	return o.Status == OrderPaid
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderCancelled
}

// IsRefunded returns true if the order is refunded
func (o *Order) IsRefunded() bool {
	return o.Status == OrderRefunded
}

// CanBeCancelled returns true if the order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderPending
}

// CanBePaid returns true if the order can still transition to paid
func (o *Order) CanBePaid() bool {
	return o.Status == OrderPending
}

// CanBeRefunded returns true if the order can be refunded
func (o *Order) CanBeRefunded() bool {
	return o.Status == OrderPaid
}

// TotalAmountInDollars returns the total amount in dollars as a float
func (o *Order) TotalAmountInDollars() float64 {
	return float64(o.TotalAmount) / 100.0
}

// IsExpired returns true if a pending order has outlived the given window
func (o *Order) IsExpired(expirationDuration time.Duration) bool {
	if o.Status != OrderPending {
		return false
	}

	return time.Since(o.CreatedAt) > expirationDuration
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderPaid:
		return "Paid"
	case OrderFailed:
		return "Payment Failed"
	case OrderCancelled:
		return "Cancelled"
	case OrderRefunded:
		return "Refunded"
	default:
		return string(o.Status)
	}
}
