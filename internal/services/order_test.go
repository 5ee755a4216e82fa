package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetItems(ctx context.Context, orderID int) ([]*models.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) GetTickets(ctx context.Context, orderID int) ([]*models.Ticket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, orderID int) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) Cancel(ctx context.Context, orderID int) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Order, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Order), args.Int(1), args.Error(2)
}

// MockWebhookParser is a mock implementation of WebhookParser
type MockWebhookParser struct {
	mock.Mock
}

func (m *MockWebhookParser) ParseWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	args := m.Called(payload, sigHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WebhookEvent), args.Error(1)
}

// MockEmailService is a mock implementation of EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendOrderConfirmation(ctx context.Context, msg OrderConfirmationEmail) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func newTestOrderService(orders *MockOrderRepository, events *MockEventRepository, payments *MockWebhookParser, email *MockEmailService) *OrderService {
	return NewOrderService(orders, events, payments, email, zerolog.Nop())
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:                5,
		UserID:            42,
		EventID:           3,
		OrderNumber:       "EVH-20260824-123456",
		TotalAmount:       6200,
		Currency:          "usd",
		Status:            models.OrderPending,
		CheckoutSessionID: "cs_test_123",
		BillingEmail:      "attendee@example.com",
		BillingName:       "Dana Whitfield",
	}
}

func sessionEvent(t *testing.T, eventType string, session *CheckoutSession) *WebhookEvent {
	t.Helper()

	raw, err := json.Marshal(session)
	require.NoError(t, err)

	event := &WebhookEvent{ID: "evt_test_1", Type: eventType}
	event.Data.Object = raw
	return event
}

func completedSession() *CheckoutSession {
	return &CheckoutSession{
		ID:                "cs_test_123",
		Status:            "complete",
		PaymentStatus:     "paid",
		AmountTotal:       6200,
		Currency:          "usd",
		ClientReferenceID: "EVH-20260824-123456",
	}
}

func TestOrderService_HandleWebhook_CheckoutCompleted(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"type":"checkout.session.completed"}`)
	sig := "t=1,v1=abc"

	t.Run("marks the order paid and sends a confirmation email", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.completed", completedSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(pendingOrder(), nil)
		orders.On("MarkPaid", ctx, 5).Return(nil)
		orders.On("GetItems", ctx, 5).Return([]*models.OrderItem{
			{OrderID: 5, Name: "General Admission", UnitPrice: 2500, Quantity: 2, Subtotal: 5000},
			{OrderID: 5, Name: "Tote Bag", UnitPrice: 1200, Quantity: 1, Subtotal: 1200},
		}, nil)
		orders.On("GetTickets", ctx, 5).Return([]*models.Ticket{
			{OrderID: 5, Code: "TKT-000000001", Status: models.TicketActive},
			{OrderID: 5, Code: "TKT-000000002", Status: models.TicketActive},
		}, nil)
		events.On("GetByID", ctx, 3).Return(&models.Event{ID: 3, Title: "Harvest Market"}, nil)
		email.On("SendOrderConfirmation", ctx, mock.MatchedBy(func(msg OrderConfirmationEmail) bool {
			return msg.To == "attendee@example.com" &&
				msg.OrderNumber == "EVH-20260824-123456" &&
				msg.EventTitle == "Harvest Market" &&
				msg.TotalAmount == 6200 &&
				len(msg.Items) == 2 &&
				len(msg.TicketCodes) == 2
		})).Return(nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertExpectations(t)
		email.AssertExpectations(t)
	})

	t.Run("ignores a duplicate delivery for an already paid order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		paid := pendingOrder()
		paid.Status = models.OrderPaid

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.completed", completedSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(paid, nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything)
		email.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("falls back to the order number when the session id is unknown", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.completed", completedSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(nil, models.ErrOrderNotFound)
		orders.On("GetByOrderNumber", ctx, "EVH-20260824-123456").Return(pendingOrder(), nil)
		orders.On("MarkPaid", ctx, 5).Return(nil)
		orders.On("GetItems", ctx, 5).Return([]*models.OrderItem{}, nil)
		orders.On("GetTickets", ctx, 5).Return([]*models.Ticket{}, nil)
		events.On("GetByID", ctx, 3).Return(&models.Event{ID: 3, Title: "Harvest Market"}, nil)
		email.On("SendOrderConfirmation", ctx, mock.Anything).Return(nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertCalled(t, "MarkPaid", ctx, 5)
	})

	t.Run("returns the error when marking paid fails so the delivery is retried", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.completed", completedSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(pendingOrder(), nil)
		orders.On("MarkPaid", ctx, 5).Return(assert.AnError)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.Error(t, err)
		email.AssertNotCalled(t, "SendOrderConfirmation", mock.Anything, mock.Anything)
	})

	t.Run("a failed confirmation email does not fail the delivery", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.completed", completedSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(pendingOrder(), nil)
		orders.On("MarkPaid", ctx, 5).Return(nil)
		orders.On("GetItems", ctx, 5).Return([]*models.OrderItem{}, nil)
		orders.On("GetTickets", ctx, 5).Return([]*models.Ticket{}, nil)
		events.On("GetByID", ctx, 3).Return(&models.Event{ID: 3, Title: "Harvest Market"}, nil)
		email.On("SendOrderConfirmation", ctx, mock.Anything).Return(assert.AnError)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
	})
}

func TestOrderService_HandleWebhook_CheckoutExpired(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"type":"checkout.session.expired"}`)
	sig := "t=1,v1=abc"

	expiredSession := func() *CheckoutSession {
		return &CheckoutSession{ID: "cs_test_123", Status: "expired", PaymentStatus: "unpaid"}
	}

	t.Run("cancels the pending order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.expired", expiredSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(pendingOrder(), nil)
		orders.On("Cancel", ctx, 5).Return(nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("leaves a paid order alone", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		paid := pendingOrder()
		paid.Status = models.OrderPaid

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.expired", expiredSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(paid, nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("succeeds when no order matches the session", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(sessionEvent(t, "checkout.session.expired", expiredSession()), nil)
		orders.On("GetByCheckoutSession", ctx, "cs_test_123").Return(nil, models.ErrOrderNotFound)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
	})
}

func TestOrderService_HandleWebhook_Envelope(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{}`)
	sig := "t=1,v1=bad"

	t.Run("propagates a signature failure", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).Return(nil, ErrWebhookSignature)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.ErrorIs(t, err, ErrWebhookSignature)
		orders.AssertNotCalled(t, "GetByCheckoutSession", mock.Anything, mock.Anything)
	})

	t.Run("ignores event types it does not handle", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		payments := new(MockWebhookParser)
		email := new(MockEmailService)
		service := newTestOrderService(orders, events, payments, email)

		payments.On("ParseWebhookEvent", payload, sig).
			Return(&WebhookEvent{ID: "evt_test_2", Type: "payment_intent.created"}, nil)

		err := service.HandleWebhook(ctx, payload, sig)

		assert.NoError(t, err)
		orders.AssertNotCalled(t, "GetByCheckoutSession", mock.Anything, mock.Anything)
	})
}

func TestOrderService_GetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the buyer's order with items and tickets", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		orders.On("GetByID", ctx, 5).Return(pendingOrder(), nil)
		orders.On("GetItems", ctx, 5).Return([]*models.OrderItem{
			{OrderID: 5, Name: "General Admission", Quantity: 2, Subtotal: 5000},
		}, nil)
		orders.On("GetTickets", ctx, 5).Return([]*models.Ticket{
			{OrderID: 5, Code: "TKT-000000001"},
		}, nil)

		buyer := &models.User{ID: 42, Role: models.RoleUser}
		detail, err := service.GetOrder(ctx, buyer, 5)

		require.NoError(t, err)
		assert.Equal(t, "EVH-20260824-123456", detail.Order.OrderNumber)
		assert.Len(t, detail.Items, 1)
		assert.Len(t, detail.Tickets, 1)
	})

	t.Run("rejects another user's order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		orders.On("GetByID", ctx, 5).Return(pendingOrder(), nil)

		stranger := &models.User{ID: 99, Role: models.RoleUser}
		_, err := service.GetOrder(ctx, stranger, 5)

		assert.ErrorIs(t, err, models.ErrUnauthorized)
		orders.AssertNotCalled(t, "GetItems", mock.Anything, mock.Anything)
	})

	t.Run("allows an admin to view any order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		orders.On("GetByID", ctx, 5).Return(pendingOrder(), nil)
		orders.On("GetItems", ctx, 5).Return([]*models.OrderItem{}, nil)
		orders.On("GetTickets", ctx, 5).Return([]*models.Ticket{}, nil)

		admin := &models.User{ID: 1, Role: models.RoleAdmin}
		detail, err := service.GetOrder(ctx, admin, 5)

		require.NoError(t, err)
		assert.Equal(t, 5, detail.Order.ID)
	})
}

func TestOrderService_ListUserOrders(t *testing.T) {
	ctx := context.Background()

	orders := new(MockOrderRepository)
	events := new(MockEventRepository)
	service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

	orders.On("GetByUser", ctx, 42, 20, 0).Return([]*models.Order{pendingOrder()}, 41, nil)

	// Page 0 normalizes to the first page with the default size
	resp, err := service.ListUserOrders(ctx, 42, 0, 0)

	require.NoError(t, err)
	assert.Equal(t, 41, resp.Total)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Len(t, resp.Orders, 1)
}

func TestOrderService_CancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels the buyer's pending order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		orders.On("GetByID", ctx, 5).Return(pendingOrder(), nil)
		orders.On("Cancel", ctx, 5).Return(nil)

		buyer := &models.User{ID: 42, Role: models.RoleUser}
		err := service.CancelOrder(ctx, buyer, 5)

		assert.NoError(t, err)
		orders.AssertExpectations(t)
	})

	t.Run("refuses to cancel a paid order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		paid := pendingOrder()
		paid.Status = models.OrderPaid
		orders.On("GetByID", ctx, 5).Return(paid, nil)

		buyer := &models.User{ID: 42, Role: models.RoleUser}
		err := service.CancelOrder(ctx, buyer, 5)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be cancelled")
		orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})

	t.Run("rejects another user's order", func(t *testing.T) {
		orders := new(MockOrderRepository)
		events := new(MockEventRepository)
		service := newTestOrderService(orders, events, new(MockWebhookParser), new(MockEmailService))

		orders.On("GetByID", ctx, 5).Return(pendingOrder(), nil)

		stranger := &models.User{ID: 99, Role: models.RoleUser}
		err := service.CancelOrder(ctx, stranger, 5)

		assert.ErrorIs(t, err, models.ErrUnauthorized)
		orders.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
	})
}
