package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

const resendAPIURL = "https://api.resend.com"

// ResendEmailService sends mail via the Resend HTTP API
type ResendEmailService struct {
	config  config.EmailConfig
	client  *http.Client
	logger  zerolog.Logger
	baseURL string
}

// NewResendEmailService creates a new Resend email service
func NewResendEmailService(cfg config.EmailConfig, logger zerolog.Logger) *ResendEmailService {
	return &ResendEmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:  logger,
		baseURL: resendAPIURL,
	}
}

// ResendEmailRequest represents the request structure for the Resend API
type ResendEmailRequest struct {
	From    string      `json:"from"`
	To      []string    `json:"to"`
	Subject string      `json:"subject"`
	HTML    string      `json:"html,omitempty"`
	Text    string      `json:"text,omitempty"`
	Tags    []ResendTag `json:"tags,omitempty"`
}

// ResendTag represents a tag for email categorization
type ResendTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ResendEmailResponse represents the response from the Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from the Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
}

// getFromField constructs the from field, with display name when set
func (s *ResendEmailService) getFromField() string {
	if s.config.FromName != "" {
		return fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail)
	}
	return s.config.FromEmail
}

// SendOrderConfirmation sends an order confirmation email
func (s *ResendEmailService) SendOrderConfirmation(ctx context.Context, msg OrderConfirmationEmail) error {
	request := ResendEmailRequest{
		From:    s.getFromField(),
		To:      []string{msg.To},
		Subject: fmt.Sprintf("Order Confirmation - %s", msg.OrderNumber),
		HTML:    orderConfirmationHTML(msg),
		Text:    orderConfirmationText(msg),
		Tags: []ResendTag{
			{Name: "category", Value: "order_confirmation"},
			{Name: "order_number", Value: msg.OrderNumber},
		},
	}

	if err := s.sendEmail(ctx, request); err != nil {
		return err
	}

	s.logger.Info().Str("to", msg.To).Str("order_number", msg.OrderNumber).Msg("order confirmation email sent")
	return nil
}

func orderConfirmationHTML(msg OrderConfirmationEmail) string {
	var items strings.Builder
	for _, item := range msg.Items {
		items.WriteString(fmt.Sprintf(`
                <tr>
                    <td style="padding: 8px; border-bottom: 1px solid #e2e8f0;">%s</td>
                    <td style="padding: 8px; border-bottom: 1px solid #e2e8f0; text-align: center;">%d</td>
                    <td style="padding: 8px; border-bottom: 1px solid #e2e8f0; text-align: right;">%s</td>
                </tr>`, item.Name, item.Quantity, formatCents(item.Subtotal)))
	}

	var tickets string
	if len(msg.TicketCodes) > 0 {
		var codes strings.Builder
		for _, code := range msg.TicketCodes {
			codes.WriteString(fmt.Sprintf(`<li style="font-family: monospace;">%s</li>`, code))
		}
		tickets = fmt.Sprintf(`
            <h3>Your Tickets</h3>
            <p>Present these codes at the entrance:</p>
            <ul>%s</ul>`, codes.String())
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Order Confirmation</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #1D4ED8; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background-color: #f9f9f9; }
        .highlight { background-color: #EFF6FF; padding: 15px; border-left: 4px solid #1D4ED8; margin: 20px 0; }
        .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Order Confirmation</h1>
        </div>
        <div class="content">
            <p>Dear %s,</p>
            <p>Thank you for your order! Here are your order details:</p>

            <div class="highlight">
                <h3>%s</h3>
                <p><strong>Order Number:</strong> %s</p>
                <p><strong>Total:</strong> %s</p>
            </div>

            <table style="width: 100%%; border-collapse: collapse;">
                <thead>
                    <tr>
                        <th style="padding: 8px; text-align: left; border-bottom: 2px solid #cbd5e1;">Item</th>
                        <th style="padding: 8px; text-align: center; border-bottom: 2px solid #cbd5e1;">Qty</th>
                        <th style="padding: 8px; text-align: right; border-bottom: 2px solid #cbd5e1;">Subtotal</th>
                    </tr>
                </thead>
                <tbody>%s
                </tbody>
            </table>
            %s
            <p>Keep this email for your records.</p>
        </div>
        <div class="footer">
            <p>City Events Hub</p>
        </div>
    </div>
</body>
</html>`, msg.Name, msg.EventTitle, msg.OrderNumber, formatCents(msg.TotalAmount), items.String(), tickets)
}

func orderConfirmationText(msg OrderConfirmationEmail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order Confirmation\n\nDear %s,\n\nThank you for your order!\n\n", msg.Name)
	fmt.Fprintf(&b, "Event: %s\nOrder Number: %s\nTotal: %s\n\nItems:\n", msg.EventTitle, msg.OrderNumber, formatCents(msg.TotalAmount))

	for _, item := range msg.Items {
		fmt.Fprintf(&b, "- %s x%d  %s\n", item.Name, item.Quantity, formatCents(item.Subtotal))
	}

	if len(msg.TicketCodes) > 0 {
		b.WriteString("\nYour tickets (present at the entrance):\n")
		for _, code := range msg.TicketCodes {
			fmt.Fprintf(&b, "- %s\n", code)
		}
	}

	b.WriteString("\nKeep this email for your records.\n\nCity Events Hub")
	return b.String()
}

// sendEmail sends an email via the Resend API
func (s *ResendEmailService) sendEmail(ctx context.Context, request ResendEmailRequest) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.config.ResendAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errorResp ResendErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errorResp); err != nil {
			return fmt.Errorf("failed to send email, status: %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to send email: %s", errorResp.Message)
	}

	var response ResendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
