package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"
)

// ErrWebhookSignature is returned when a webhook payload fails signature
// verification and must not be processed.
var ErrWebhookSignature = errors.New("webhook signature verification failed")

// webhookTolerance bounds how old a signed webhook timestamp may be
// before the delivery is rejected as a possible replay.
const webhookTolerance = 5 * time.Minute

// StripeClient talks to the Stripe REST API directly. Requests are
// form-encoded and responses are JSON; only the endpoints the
// application needs are wrapped here.
type StripeClient struct {
	config  config.StripeConfig
	client  *http.Client
	baseURL string
}

// NewStripeClient creates a new Stripe API client
func NewStripeClient(cfg config.StripeConfig) *StripeClient {
	return &StripeClient{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: "https://api.stripe.com",
	}
}

// CheckoutLineItem is one purchasable line on a hosted checkout page
type CheckoutLineItem struct {
	Name       string
	UnitAmount int // in cents
	Quantity   int
}

// CheckoutSessionParams describes the hosted checkout page to create
type CheckoutSessionParams struct {
	LineItems         []CheckoutLineItem
	Currency          string
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	Metadata          map[string]string
}

// CheckoutSession is Stripe's checkout session object, reduced to the
// fields the application reads
type CheckoutSession struct {
	ID                string            `json:"id"`
	URL               string            `json:"url"`
	Status            string            `json:"status"`         // open, complete, expired
	PaymentStatus     string            `json:"payment_status"` // paid, unpaid, no_payment_required
	AmountTotal       int               `json:"amount_total"`
	Currency          string            `json:"currency"`
	CustomerEmail     string            `json:"customer_email"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

// IsPaid reports whether the session's payment has gone through
func (s *CheckoutSession) IsPaid() bool {
	return s.PaymentStatus == "paid"
}

// Account is a Stripe connected account, reduced to the onboarding
// state fields the organizer dashboard polls
type Account struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	ChargesEnabled   bool   `json:"charges_enabled"`
	PayoutsEnabled   bool   `json:"payouts_enabled"`
	DetailsSubmitted bool   `json:"details_submitted"`
}

// AccountLink is a single-use Stripe onboarding URL
type AccountLink struct {
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// WebhookEvent is the envelope Stripe posts to the webhook endpoint.
// Data.Object is left raw; the caller unmarshals it by event type.
type WebhookEvent struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Created int64  `json:"created"`
	Data    struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// CheckoutSession unmarshals the event payload as a checkout session
func (e *WebhookEvent) CheckoutSession() (*CheckoutSession, error) {
	var session CheckoutSession
	if err := json.Unmarshal(e.Data.Object, &session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session from event: %w", err)
	}
	return &session, nil
}

// StripeError represents an error response from the Stripe API
type StripeError struct {
	StatusCode int    `json:"-"`
	Type       string `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *StripeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("stripe: %s (%s)", e.Message, e.Code)
	}
	return fmt.Sprintf("stripe: %s", e.Message)
}

type stripeErrorResponse struct {
	Error StripeError `json:"error"`
}

// CreateCheckoutSession creates a hosted checkout page for the given
// line items and returns the session with its redirect URL
func (c *StripeClient) CreateCheckoutSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error) {
	if len(params.LineItems) == 0 {
		return nil, fmt.Errorf("checkout session requires at least one line item")
	}

	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	if params.ClientReferenceID != "" {
		form.Set("client_reference_id", params.ClientReferenceID)
	}

	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.Itoa(item.UnitAmount))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
	}

	for key, value := range params.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	session := &CheckoutSession{}
	if err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form, session); err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

// GetCheckoutSession retrieves a checkout session by id
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	session := &CheckoutSession{}
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, session); err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	return session, nil
}

// CreateAccount creates an Express connected account for an organizer
func (c *StripeClient) CreateAccount(ctx context.Context, email string) (*Account, error) {
	form := url.Values{}
	form.Set("type", "express")
	if email != "" {
		form.Set("email", email)
	}

	account := &Account{}
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", form, account); err != nil {
		return nil, fmt.Errorf("failed to create connected account: %w", err)
	}
	return account, nil
}

// GetAccount retrieves a connected account's current onboarding state
func (c *StripeClient) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	account := &Account{}
	path := "/v1/accounts/" + url.PathEscape(accountID)
	if err := c.do(ctx, http.MethodGet, path, nil, account); err != nil {
		return nil, fmt.Errorf("failed to get connected account: %w", err)
	}
	return account, nil
}

// CreateAccountLink creates a fresh single-use onboarding URL for a
// connected account whose setup is incomplete
func (c *StripeClient) CreateAccountLink(ctx context.Context, accountID string) (*AccountLink, error) {
	form := url.Values{}
	form.Set("account", accountID)
	form.Set("type", "account_onboarding")
	form.Set("refresh_url", c.config.ConnectRefreshURL)
	form.Set("return_url", c.config.ConnectReturnURL)

	link := &AccountLink{}
	if err := c.do(ctx, http.MethodPost, "/v1/account_links", form, link); err != nil {
		return nil, fmt.Errorf("failed to create account link: %w", err)
	}
	return link, nil
}

// VerifyWebhookSignature checks the Stripe-Signature header against the
// raw request payload. Callers must pass the body exactly as received.
func (c *StripeClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	return verifyStripeSignature(payload, sigHeader, c.config.WebhookSecret, time.Now())
}

// ParseWebhookEvent verifies the signature and decodes the event
// envelope in one step
func (c *StripeClient) ParseWebhookEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	if err := c.VerifyWebhookSignature(payload, sigHeader); err != nil {
		return nil, err
	}

	event := &WebhookEvent{}
	if err := json.Unmarshal(payload, event); err != nil {
		return nil, fmt.Errorf("failed to decode webhook event: %w", err)
	}
	return event, nil
}

// verifyStripeSignature implements Stripe's signature scheme: the header
// carries a timestamp and one or more v1 signatures, each an HMAC-SHA256
// of "{timestamp}.{payload}" keyed with the endpoint secret.
func verifyStripeSignature(payload []byte, sigHeader, secret string, now time.Time) error {
	if secret == "" {
		return fmt.Errorf("%w: webhook secret not configured", ErrWebhookSignature)
	}
	if sigHeader == "" {
		return fmt.Errorf("%w: missing signature header", ErrWebhookSignature)
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		pair := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(pair) != 2 {
			continue
		}
		switch pair[0] {
		case "t":
			timestamp = pair[1]
		case "v1":
			signatures = append(signatures, pair[1])
		}
	}

	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("%w: malformed signature header", ErrWebhookSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", ErrWebhookSignature)
	}

	age := now.Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrWebhookSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, signature := range signatures {
		if hmac.Equal([]byte(signature), []byte(expected)) {
			return nil
		}
	}

	return ErrWebhookSignature
}

// do sends one API request and decodes the JSON response into out.
// A nil form sends no body; non-2xx responses become *StripeError.
func (c *StripeClient) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	req.Header.Set("Accept", "application/json")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return c.handleAPIError(resp.StatusCode, bodyBytes)
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// handleAPIError maps a Stripe error response to a *StripeError
func (c *StripeClient) handleAPIError(statusCode int, body []byte) error {
	var errResp stripeErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return fmt.Errorf("stripe API error (status %d): %s", statusCode, string(body))
	}

	apiErr := errResp.Error
	apiErr.StatusCode = statusCode
	return &apiErr
}
