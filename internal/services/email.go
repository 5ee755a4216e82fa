package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

// EmailService sends transactional mail. Failures are reported to the
// caller but must never fail the operation that triggered the mail.
type EmailService interface {
	SendOrderConfirmation(ctx context.Context, msg OrderConfirmationEmail) error
}

// OrderConfirmationEmail carries everything the confirmation mail
// renders. Amounts are in cents.
type OrderConfirmationEmail struct {
	To          string
	Name        string
	OrderNumber string
	EventTitle  string
	TotalAmount int
	Items       []OrderEmailItem
	TicketCodes []string
}

// OrderEmailItem is one purchased line in the confirmation mail
type OrderEmailItem struct {
	Name     string
	Quantity int
	Subtotal int
}

// NewEmailService returns the Resend-backed sender when an API key is
// configured, otherwise a no-op sender that only logs.
func NewEmailService(cfg config.EmailConfig, logger zerolog.Logger) EmailService {
	if cfg.ResendAPIKey == "" {
		logger.Warn().Msg("no email provider configured, order confirmations will be logged only")
		return &NoopEmailService{logger: logger}
	}
	return NewResendEmailService(cfg, logger)
}

// NoopEmailService logs instead of sending, for development and tests
type NoopEmailService struct {
	logger zerolog.Logger
}

// SendOrderConfirmation logs the mail that would have been sent
func (s *NoopEmailService) SendOrderConfirmation(ctx context.Context, msg OrderConfirmationEmail) error {
	s.logger.Info().
		Str("to", msg.To).
		Str("order_number", msg.OrderNumber).
		Int("total_amount", msg.TotalAmount).
		Msg("order confirmation email suppressed (no provider configured)")
	return nil
}

// formatCents renders a cent amount as dollars for display
func formatCents(cents int) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100.0)
}
