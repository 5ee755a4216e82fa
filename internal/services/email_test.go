package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

func testConfirmationEmail() OrderConfirmationEmail {
	return OrderConfirmationEmail{
		To:          "buyer@example.com",
		Name:        "Jamie Buyer",
		OrderNumber: "EVH-20260824-123456",
		EventTitle:  "Riverfront Food Festival",
		TotalAmount: 5500,
		Items: []OrderEmailItem{
			{Name: "General Admission", Quantity: 2, Subtotal: 5000},
			{Name: "Festival T-Shirt", Quantity: 1, Subtotal: 500},
		},
		TicketCodes: []string{"TKT-000000001", "TKT-000000002"},
	}
}

func TestNewEmailService_SelectsProvider(t *testing.T) {
	noop := NewEmailService(config.EmailConfig{}, zerolog.Nop())
	assert.IsType(t, &NoopEmailService{}, noop)

	resend := NewEmailService(config.EmailConfig{ResendAPIKey: "re_test"}, zerolog.Nop())
	assert.IsType(t, &ResendEmailService{}, resend)
}

func TestResendEmailService_SendOrderConfirmation(t *testing.T) {
	var captured ResendEmailRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		authHeader = r.Header.Get("Authorization")

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ResendEmailResponse{ID: "email_123"})
	}))
	defer server.Close()

	svc := NewResendEmailService(config.EmailConfig{
		ResendAPIKey: "re_test_key",
		FromEmail:    "noreply@cityeventshub.com",
		FromName:     "City Events Hub",
	}, zerolog.Nop())
	svc.baseURL = server.URL

	err := svc.SendOrderConfirmation(context.Background(), testConfirmationEmail())

	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, "City Events Hub <noreply@cityeventshub.com>", captured.From)
	assert.Equal(t, []string{"buyer@example.com"}, captured.To)
	assert.Equal(t, "Order Confirmation - EVH-20260824-123456", captured.Subject)

	assert.Contains(t, captured.HTML, "Riverfront Food Festival")
	assert.Contains(t, captured.HTML, "EVH-20260824-123456")
	assert.Contains(t, captured.HTML, "$55.00")
	assert.Contains(t, captured.HTML, "General Admission")
	assert.Contains(t, captured.HTML, "TKT-000000001")

	assert.Contains(t, captured.Text, "General Admission x2")
	assert.Contains(t, captured.Text, "$50.00")
	assert.Contains(t, captured.Text, "TKT-000000002")

	require.Len(t, captured.Tags, 2)
	assert.Equal(t, ResendTag{Name: "category", Value: "order_confirmation"}, captured.Tags[0])
	assert.Equal(t, ResendTag{Name: "order_number", Value: "EVH-20260824-123456"}, captured.Tags[1])
}

func TestResendEmailService_SendOrderConfirmation_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ResendErrorResponse{Message: "invalid from address", Name: "validation_error"})
	}))
	defer server.Close()

	svc := NewResendEmailService(config.EmailConfig{ResendAPIKey: "re_test"}, zerolog.Nop())
	svc.baseURL = server.URL

	err := svc.SendOrderConfirmation(context.Background(), testConfirmationEmail())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid from address")
}

func TestResendEmailService_FromFieldWithoutName(t *testing.T) {
	svc := NewResendEmailService(config.EmailConfig{
		ResendAPIKey: "re_test",
		FromEmail:    "noreply@cityeventshub.com",
	}, zerolog.Nop())

	assert.Equal(t, "noreply@cityeventshub.com", svc.getFromField())
}

func TestNoopEmailService_SendOrderConfirmation(t *testing.T) {
	svc := &NoopEmailService{logger: zerolog.Nop()}

	assert.NoError(t, svc.SendOrderConfirmation(context.Background(), testConfirmationEmail()))
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents    int
		expected string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{100, "$1.00"},
		{2550, "$25.50"},
		{1000000, "$10000.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatCents(tt.cents))
	}
}
