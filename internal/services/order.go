package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// OrderRepository interface for order data operations
type OrderRepository interface {
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error)
	GetItems(ctx context.Context, orderID int) ([]*models.OrderItem, error)
	GetTickets(ctx context.Context, orderID int) ([]*models.Ticket, error)
	MarkPaid(ctx context.Context, orderID int) error
	Cancel(ctx context.Context, orderID int) error
	GetByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Order, int, error)
}

// WebhookParser is the slice of the payment client the webhook endpoint
// needs: signature verification plus envelope decoding
type WebhookParser interface {
	ParseWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error)
}

// OrderEventRepository is the slice of the event store the order
// service needs to describe orders in confirmation emails
type OrderEventRepository interface {
	GetByID(ctx context.Context, id int) (*models.Event, error)
}

// OrderService owns order fulfillment and order queries. Payment
// completion arrives exclusively through webhooks; the service turns a
// verified delivery into the paid transition, issued tickets and a
// confirmation email.
type OrderService struct {
	orderRepo OrderRepository
	eventRepo OrderEventRepository
	payments  WebhookParser
	email     EmailService
	logger    zerolog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orderRepo OrderRepository, eventRepo OrderEventRepository, payments WebhookParser, email EmailService, logger zerolog.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		eventRepo: eventRepo,
		payments:  payments,
		email:     email,
		logger:    logger,
	}
}

// OrderDetail bundles an order with its line items and issued tickets
type OrderDetail struct {
	Order   *models.Order       `json:"order"`
	Items   []*models.OrderItem `json:"items"`
	Tickets []*models.Ticket    `json:"tickets,omitempty"`
}

// OrderListResponse is a paginated order listing
type OrderListResponse struct {
	Orders     []*models.Order `json:"orders"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// HandleWebhook verifies and processes one payment webhook delivery.
// The error contract maps to response codes: ErrWebhookSignature means
// the payload is untrusted and gets a 400, any other error gets a 500
// so the processor redelivers, nil means 200.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	event, err := s.payments.ParseWebhookEvent(payload, sigHeader)
	if err != nil {
		return err
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	case "checkout.session.expired":
		return s.handleCheckoutExpired(ctx, event)
	default:
		s.logger.Debug().Str("event_type", event.Type).Msg("ignoring webhook event")
		return nil
	}
}

func (s *OrderService) handleCheckoutCompleted(ctx context.Context, event *WebhookEvent) error {
	session, err := event.CheckoutSession()
	if err != nil {
		return err
	}

	order, err := s.orderForSession(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to resolve order for session %s: %w", session.ID, err)
	}

	if order.IsPaid() {
		// Processors redeliver; a repeated completed event is a no-op
		s.logger.Info().Str("order_number", order.OrderNumber).Msg("order already paid, ignoring duplicate delivery")
		return nil
	}

	if err := s.orderRepo.MarkPaid(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	s.logger.Info().
		Int("order_id", order.ID).
		Str("order_number", order.OrderNumber).
		Int("total_amount", order.TotalAmount).
		Msg("order paid")

	// Fulfillment is committed at this point; a failed email must not
	// make the processor redeliver
	s.sendConfirmationEmail(ctx, order)
	return nil
}

func (s *OrderService) handleCheckoutExpired(ctx context.Context, event *WebhookEvent) error {
	session, err := event.CheckoutSession()
	if err != nil {
		return err
	}

	order, err := s.orderForSession(ctx, session)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			return nil
		}
		return fmt.Errorf("failed to resolve order for session %s: %w", session.ID, err)
	}

	if !order.IsPending() {
		return nil
	}

	if err := s.orderRepo.Cancel(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to cancel expired order: %w", err)
	}

	s.logger.Info().Str("order_number", order.OrderNumber).Msg("checkout session expired, order cancelled")
	return nil
}

// orderForSession resolves the order a session belongs to. The session
// id is authoritative; the client reference carries the order number
// and covers an order that never got its session id recorded.
func (s *OrderService) orderForSession(ctx context.Context, session *CheckoutSession) (*models.Order, error) {
	order, err := s.orderRepo.GetByCheckoutSession(ctx, session.ID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, models.ErrOrderNotFound) || session.ClientReferenceID == "" {
		return nil, err
	}

	return s.orderRepo.GetByOrderNumber(ctx, session.ClientReferenceID)
}

func (s *OrderService) sendConfirmationEmail(ctx context.Context, order *models.Order) {
	items, err := s.orderRepo.GetItems(ctx, order.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to load items for confirmation email")
		return
	}

	emailItems := make([]OrderEmailItem, 0, len(items))
	for _, item := range items {
		emailItems = append(emailItems, OrderEmailItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Subtotal: item.Subtotal,
		})
	}

	var codes []string
	tickets, err := s.orderRepo.GetTickets(ctx, order.ID)
	if err != nil {
		s.logger.Warn().Err(err).Str("order_number", order.OrderNumber).Msg("failed to load tickets for confirmation email")
	} else {
		for _, ticket := range tickets {
			codes = append(codes, ticket.Code)
		}
	}

	eventTitle := ""
	if event, err := s.eventRepo.GetByID(ctx, order.EventID); err == nil {
		eventTitle = event.Title
	} else {
		s.logger.Warn().Err(err).Int("event_id", order.EventID).Msg("failed to load event for confirmation email")
	}

	msg := OrderConfirmationEmail{
		To:          order.BillingEmail,
		Name:        order.BillingName,
		OrderNumber: order.OrderNumber,
		EventTitle:  eventTitle,
		TotalAmount: order.TotalAmount,
		Items:       emailItems,
		TicketCodes: codes,
	}

	if err := s.email.SendOrderConfirmation(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("order_number", order.OrderNumber).Msg("failed to send order confirmation email")
	}
}

// GetOrder retrieves an order with items and tickets. Buyers see their
// own orders, admins see all.
func (s *OrderService) GetOrder(ctx context.Context, user *models.User, orderID int) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		return nil, fmt.Errorf("%w: order belongs to another user", models.ErrUnauthorized)
	}

	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	tickets, err := s.orderRepo.GetTickets(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order tickets: %w", err)
	}

	return &OrderDetail{Order: order, Items: items, Tickets: tickets}, nil
}

// ListUserOrders lists a user's own orders, newest first
func (s *OrderService) ListUserOrders(ctx context.Context, userID, page, pageSize int) (*OrderListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	orders, total, err := s.orderRepo.GetByUser(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return &OrderListResponse{
		Orders:     orders,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// CancelOrder cancels a buyer's own pending order, typically after they
// backed out of the payment page
func (s *OrderService) CancelOrder(ctx context.Context, user *models.User, orderID int) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.UserID != user.ID && !user.IsAdmin() {
		return fmt.Errorf("%w: order belongs to another user", models.ErrUnauthorized)
	}

	if !order.CanBeCancelled() {
		return fmt.Errorf("order cannot be cancelled in status %s", order.Status)
	}

	if err := s.orderRepo.Cancel(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	s.logger.Info().Str("order_number", order.OrderNumber).Msg("order cancelled by user")
	return nil
}
