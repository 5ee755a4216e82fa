package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyStripeSignature(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed"}`)
	now := time.Now()

	tests := []struct {
		name      string
		sigHeader string
		secret    string
		wantErr   bool
	}{
		{
			name:      "valid signature",
			sigHeader: signWebhookPayload(payload, secret, now),
			secret:    secret,
			wantErr:   false,
		},
		{
			name:      "wrong secret",
			sigHeader: signWebhookPayload(payload, "whsec_other", now),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "missing header",
			sigHeader: "",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "malformed header",
			sigHeader: "not-a-signature",
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "timestamp too old",
			sigHeader: signWebhookPayload(payload, secret, now.Add(-10*time.Minute)),
			secret:    secret,
			wantErr:   true,
		},
		{
			name:      "unconfigured secret",
			sigHeader: signWebhookPayload(payload, secret, now),
			secret:    "",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := verifyStripeSignature(payload, tt.sigHeader, tt.secret, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWebhookSignature)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestVerifyStripeSignature_MultipleSignatures(t *testing.T) {
	secret := "whsec_test_secret"
	payload := []byte(`{"id":"evt_456"}`)
	now := time.Now()

	// Header carries a stale signature alongside the valid one, the way
	// Stripe sends them during secret rotation
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(now.Unix(), 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	validSig := hex.EncodeToString(mac.Sum(nil))
	header := fmt.Sprintf("t=%d,v1=deadbeef,v1=%s", now.Unix(), validSig)

	err := verifyStripeSignature(payload, header, secret, now)
	assert.NoError(t, err)
}

func TestStripeClient_ParseWebhookEvent(t *testing.T) {
	secret := "whsec_test_secret"
	client := NewStripeClient(config.StripeConfig{WebhookSecret: secret})

	payload := []byte(`{
		"id": "evt_789",
		"type": "checkout.session.completed",
		"created": 1700000000,
		"data": {
			"object": {
				"id": "cs_test_abc",
				"payment_status": "paid",
				"client_reference_id": "EVH-20260101-123456"
			}
		}
	}`)

	header := signWebhookPayload(payload, secret, time.Now())

	event, err := client.ParseWebhookEvent(payload, header)
	require.NoError(t, err)
	assert.Equal(t, "evt_789", event.ID)
	assert.Equal(t, "checkout.session.completed", event.Type)

	session, err := event.CheckoutSession()
	require.NoError(t, err)
	assert.Equal(t, "cs_test_abc", session.ID)
	assert.True(t, session.IsPaid())
	assert.Equal(t, "EVH-20260101-123456", session.ClientReferenceID)
}

func TestStripeClient_ParseWebhookEvent_BadSignature(t *testing.T) {
	client := NewStripeClient(config.StripeConfig{WebhookSecret: "whsec_test_secret"})

	payload := []byte(`{"id":"evt_1"}`)
	header := signWebhookPayload(payload, "whsec_wrong", time.Now())

	_, err := client.ParseWebhookEvent(payload, header)
	assert.ErrorIs(t, err, ErrWebhookSignature)
}

func TestStripeClient_CreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())

		gotAuth = r.Header.Get("Authorization")
		gotForm = make(map[string]string)
		for key := range r.PostForm {
			gotForm[key] = r.PostForm.Get(key)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cs_test_123",
			"url": "https://checkout.stripe.com/c/pay/cs_test_123",
			"status": "open",
			"payment_status": "unpaid"
		}`)
	}))
	defer server.Close()

	client := NewStripeClient(config.StripeConfig{SecretKey: "sk_test_key"})
	client.baseURL = server.URL

	session, err := client.CreateCheckoutSession(context.Background(), &CheckoutSessionParams{
		LineItems: []CheckoutLineItem{
			{Name: "General Admission", UnitAmount: 2500, Quantity: 2},
			{Name: "Vendor Booth", UnitAmount: 10000, Quantity: 1},
		},
		CustomerEmail:     "buyer@example.com",
		ClientReferenceID: "EVH-20260101-123456",
		SuccessURL:        "https://example.com/success",
		CancelURL:         "https://example.com/cancel",
		Metadata:          map[string]string{"order_number": "EVH-20260101-123456"},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_123", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_123", session.URL)
	assert.False(t, session.IsPaid())

	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.Equal(t, "payment", gotForm["mode"])
	assert.Equal(t, "buyer@example.com", gotForm["customer_email"])
	assert.Equal(t, "EVH-20260101-123456", gotForm["client_reference_id"])
	assert.Equal(t, "2", gotForm["line_items[0][quantity]"])
	assert.Equal(t, "2500", gotForm["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "General Admission", gotForm["line_items[0][price_data][product_data][name]"])
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"])
	assert.Equal(t, "Vendor Booth", gotForm["line_items[1][price_data][product_data][name]"])
	assert.Equal(t, "EVH-20260101-123456", gotForm["metadata[order_number]"])
}

func TestStripeClient_CreateCheckoutSession_NoItems(t *testing.T) {
	client := NewStripeClient(config.StripeConfig{SecretKey: "sk_test_key"})

	_, err := client.CreateCheckoutSession(context.Background(), &CheckoutSessionParams{})
	assert.Error(t, err)
}

func TestStripeClient_GetCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_test_456", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"id": "cs_test_456",
			"status": "complete",
			"payment_status": "paid",
			"amount_total": 5000,
			"currency": "usd"
		}`)
	}))
	defer server.Close()

	client := NewStripeClient(config.StripeConfig{SecretKey: "sk_test_key"})
	client.baseURL = server.URL

	session, err := client.GetCheckoutSession(context.Background(), "cs_test_456")
	require.NoError(t, err)
	assert.Equal(t, "complete", session.Status)
	assert.True(t, session.IsPaid())
	assert.Equal(t, 5000, session.AmountTotal)
}

func TestStripeClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error": {"type": "card_error", "code": "card_declined", "message": "Your card was declined."}}`)
	}))
	defer server.Close()

	client := NewStripeClient(config.StripeConfig{SecretKey: "sk_test_key"})
	client.baseURL = server.URL

	_, err := client.GetCheckoutSession(context.Background(), "cs_test_declined")
	require.Error(t, err)

	var stripeErr *StripeError
	require.ErrorAs(t, err, &stripeErr)
	assert.Equal(t, http.StatusPaymentRequired, stripeErr.StatusCode)
	assert.Equal(t, "card_declined", stripeErr.Code)
	assert.Contains(t, stripeErr.Message, "declined")
}

func TestStripeClient_CreateAccountAndLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/accounts":
			assert.Equal(t, "express", r.PostForm.Get("type"))
			assert.Equal(t, "organizer@example.com", r.PostForm.Get("email"))
			fmt.Fprint(w, `{"id": "acct_123", "charges_enabled": false, "details_submitted": false}`)
		case "/v1/account_links":
			assert.Equal(t, "acct_123", r.PostForm.Get("account"))
			assert.Equal(t, "account_onboarding", r.PostForm.Get("type"))
			assert.Equal(t, "https://example.com/refresh", r.PostForm.Get("refresh_url"))
			assert.Equal(t, "https://example.com/return", r.PostForm.Get("return_url"))
			fmt.Fprint(w, `{"url": "https://connect.stripe.com/setup/s/abc", "expires_at": 1700000300}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewStripeClient(config.StripeConfig{
		SecretKey:         "sk_test_key",
		ConnectRefreshURL: "https://example.com/refresh",
		ConnectReturnURL:  "https://example.com/return",
	})
	client.baseURL = server.URL

	account, err := client.CreateAccount(context.Background(), "organizer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "acct_123", account.ID)
	assert.False(t, account.ChargesEnabled)

	link, err := client.CreateAccountLink(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/setup/s/abc", link.URL)
}
