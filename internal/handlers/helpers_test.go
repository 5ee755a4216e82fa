package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessejferrell/Events-Hub-sub001/internal/middleware"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

func testStore() sessions.Store {
	return sessions.NewCookieStore([]byte("test-session-secret-0123456789ab"))
}

func testUser() *models.User {
	return &models.User{
		ID:        7,
		Email:     "resident@example.com",
		FirstName: "Dana",
		LastName:  "Reyes",
		Role:      models.RoleUser,
		IsActive:  true,
	}
}

// requestWithUser attaches an authenticated user the way the auth
// middleware would
func requestWithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(middleware.SetUserContext(r.Context(), user))
}

// seedCartCookie writes a cart into a session and returns the resulting
// cookie, simulating a client that already has items in its cart
func seedCartCookie(t *testing.T, store sessions.Store, cart *models.Cart) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	session, err := store.Get(req, middleware.SessionName)
	require.NoError(t, err)

	raw, err := json.Marshal(cart)
	require.NoError(t, err)

	session.Values[cartSessionKey] = raw
	require.NoError(t, session.Save(req, rr))

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

// cartFromResponse decodes the cart a handler wrote back into the
// session cookie
func cartFromResponse(t *testing.T, store sessions.Store, rr *httptest.ResponseRecorder) *models.Cart {
	t.Helper()

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies, "handler did not write a session cookie")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	session, err := store.Get(req, middleware.SessionName)
	require.NoError(t, err)

	raw, ok := session.Values[cartSessionKey].([]byte)
	require.True(t, ok, "session has no cart")

	cart := &models.Cart{}
	require.NoError(t, json.Unmarshal(raw, cart))
	return cart
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(dst))
}

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid input", models.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"invalid quantity", models.ErrInvalidQuantity, http.StatusBadRequest},
		{"empty cart", models.ErrCartEmpty, http.StatusBadRequest},
		{"unauthorized", models.ErrUnauthorized, http.StatusForbidden},
		{"event not found", models.ErrEventNotFound, http.StatusNotFound},
		{"product not found", models.ErrProductNotFound, http.StatusNotFound},
		{"cart item not found", models.ErrCartItemNotFound, http.StatusNotFound},
		{"registration pending", models.ErrRegistrationPending, http.StatusConflict},
		{"insufficient stock", models.ErrInsufficientStock, http.StatusConflict},
		{"duplicate entry", models.ErrDuplicateEntry, http.StatusConflict},
		{"unknown error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondServiceError(rr, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var body map[string]string
			decodeBody(t, rr, &body)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestNewCartView(t *testing.T) {
	t.Run("empty cart has no next path", func(t *testing.T) {
		view := newCartView(models.NewCart())

		assert.Empty(t, view.Items)
		assert.Zero(t, view.Total)
		assert.Empty(t, view.NextPath)
	})

	t.Run("pending registration drives next path", func(t *testing.T) {
		cart := models.NewCart()
		_, err := cart.AddItem(&models.Product{ID: 1, EventID: 2, Type: models.ProductVendorSpot, Name: "Vendor Spot", Price: 5000}, 1)
		require.NoError(t, err)

		view := newCartView(cart)

		assert.Equal(t, 5000, view.Total)
		assert.Equal(t, models.VendorRegistrationPath+cart.Items[0].ID, view.NextPath)
	})

	t.Run("resolved cart points at checkout", func(t *testing.T) {
		cart := models.NewCart()
		_, err := cart.AddItem(&models.Product{ID: 1, EventID: 2, Type: models.ProductTicket, Name: "Ticket", Price: 1500}, 2)
		require.NoError(t, err)

		view := newCartView(cart)

		assert.Equal(t, 3000, view.Total)
		assert.Equal(t, models.CheckoutPath, view.NextPath)
	})
}
