package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// CheckoutOrderRepository interface for order persistence at checkout
type CheckoutOrderRepository interface {
	Create(ctx context.Context, order *models.Order, items []*models.OrderItem) (*models.Order, error)
	SetCheckoutSession(ctx context.Context, orderID int, sessionID string) error
	GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error)
	Cancel(ctx context.Context, orderID int) error
}

// CheckoutProductRepository is the slice of the product store checkout
// needs for its stock re-check
type CheckoutProductRepository interface {
	GetByID(ctx context.Context, id int) (*models.Product, error)
}

// PaymentClient is the slice of the payment processor the checkout
// service talks to
type PaymentClient interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

// RegistrationPendingError blocks checkout while a registration form is
// outstanding and carries where to send the user instead
type RegistrationPendingError struct {
	NextPath string
}

func (e *RegistrationPendingError) Error() string {
	return fmt.Sprintf("registration still pending, next form at %s", e.NextPath)
}

func (e *RegistrationPendingError) Unwrap() error {
	return models.ErrRegistrationPending
}

// CheckoutService turns a ready cart into a pending order and a hosted
// payment page. Payment completion is reported by the webhook; the
// confirm path only reads.
type CheckoutService struct {
	orderRepo   CheckoutOrderRepository
	productRepo CheckoutProductRepository
	payments    PaymentClient
	stripeCfg   config.StripeConfig
	logger      zerolog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(orderRepo CheckoutOrderRepository, productRepo CheckoutProductRepository, payments PaymentClient, stripeCfg config.StripeConfig, logger zerolog.Logger) *CheckoutService {
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		payments:    payments,
		stripeCfg:   stripeCfg,
		logger:      logger,
	}
}

// CheckoutStartResult carries the pending order and the payment page
// redirect for it
type CheckoutStartResult struct {
	Order       *models.Order `json:"order"`
	CheckoutURL string        `json:"checkout_url"`
}

// CheckoutConfirmation reports order state when the buyer returns from
// the payment page
type CheckoutConfirmation struct {
	Order         *models.Order `json:"order"`
	Paid          bool          `json:"paid"`
	SessionStatus string        `json:"session_status"`
}

// StartCheckout creates a pending order from the cart and returns the
// hosted payment page URL. The cart must be non-empty with every
// registration resolved, and every item must still be in stock; stock
// is only a pre-check here, the decrement happens when payment lands.
func (s *CheckoutService) StartCheckout(ctx context.Context, user *models.User, cart *models.Cart) (*CheckoutStartResult, error) {
	if cart.IsEmpty() {
		return nil, models.ErrCartEmpty
	}

	if !cart.ReadyForCheckout() {
		return nil, &RegistrationPendingError{NextPath: cart.NextRegistrationPath()}
	}

	if err := s.checkStock(ctx, cart); err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID: user.ID,
		// Carts are effectively single-event; mixed carts attribute
		// the order to the first item's event
		EventID:      cart.Items[0].EventID,
		TotalAmount:  cart.TotalAmount(),
		Currency:     "usd",
		BillingEmail: user.Email,
		BillingName:  user.FullName(),
	}

	items := make([]*models.OrderItem, 0, len(cart.Items))
	for i := range cart.Items {
		ci := &cart.Items[i]
		items = append(items, &models.OrderItem{
			ProductID:   ci.ProductID,
			ProductType: ci.ProductType,
			CartItemID:  ci.ID,
			Name:        ci.Name,
			UnitPrice:   ci.Price,
			Quantity:    ci.Quantity,
			Subtotal:    ci.Subtotal(),
		})
	}

	created, err := s.orderRepo.Create(ctx, order, items)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	session, err := s.payments.CreateCheckoutSession(ctx, s.sessionParams(user, cart, created))
	if err != nil {
		// The order never reached the payment page; cancel it so it
		// does not linger as pending
		if cancelErr := s.orderRepo.Cancel(ctx, created.ID); cancelErr != nil {
			s.logger.Warn().Err(cancelErr).Int("order_id", created.ID).Msg("failed to cancel order after checkout session error")
		}
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	if err := s.orderRepo.SetCheckoutSession(ctx, created.ID, session.ID); err != nil {
		return nil, fmt.Errorf("failed to link checkout session: %w", err)
	}
	created.CheckoutSessionID = session.ID

	s.logger.Info().
		Int("order_id", created.ID).
		Str("order_number", created.OrderNumber).
		Str("session_id", session.ID).
		Int("total_amount", created.TotalAmount).
		Msg("checkout started")

	return &CheckoutStartResult{Order: created, CheckoutURL: session.URL}, nil
}

// ConfirmCheckout verifies a checkout session when the buyer lands back
// on the success page. It reports state only; marking the order paid is
// the webhook's job.
func (s *CheckoutService) ConfirmCheckout(ctx context.Context, user *models.User, sessionID string) (*CheckoutConfirmation, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", models.ErrInvalidInput)
	}

	session, err := s.payments.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify checkout session: %w", err)
	}

	order, err := s.orderRepo.GetByCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		return nil, fmt.Errorf("%w: order belongs to another user", models.ErrUnauthorized)
	}

	// The order may still read pending when the buyer beats the
	// webhook back; the session's own payment state covers that gap
	return &CheckoutConfirmation{
		Order:         order,
		Paid:          order.IsPaid() || session.IsPaid(),
		SessionStatus: session.Status,
	}, nil
}

// checkStock re-checks availability for every cart item right before
// the order is created
func (s *CheckoutService) checkStock(ctx context.Context, cart *models.Cart) error {
	for i := range cart.Items {
		item := &cart.Items[i]

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to check stock for %q: %w", item.Name, err)
		}

		if !product.Active {
			return fmt.Errorf("%w: %q is no longer available", models.ErrInsufficientStock, item.Name)
		}

		if !product.HasStockFor(item.Quantity) {
			return fmt.Errorf("%w: only %d of %q left", models.ErrInsufficientStock, product.Available(), item.Name)
		}
	}
	return nil
}

func (s *CheckoutService) sessionParams(user *models.User, cart *models.Cart, order *models.Order) *CheckoutSessionParams {
	lineItems := make([]CheckoutLineItem, 0, len(cart.Items))
	for i := range cart.Items {
		ci := &cart.Items[i]
		lineItems = append(lineItems, CheckoutLineItem{
			Name:       ci.Name,
			UnitAmount: ci.Price,
			Quantity:   ci.Quantity,
		})
	}

	return &CheckoutSessionParams{
		LineItems:         lineItems,
		Currency:          order.Currency,
		CustomerEmail:     user.Email,
		ClientReferenceID: order.OrderNumber,
		SuccessURL:        s.stripeCfg.SuccessURL,
		CancelURL:         s.stripeCfg.CancelURL,
		Metadata:          map[string]string{"order_number": order.OrderNumber},
	}
}
