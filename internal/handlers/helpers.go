package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/jessejferrell/Events-Hub-sub001/internal/middleware"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

const cartSessionKey = "cart"

// maxJSONBody caps request bodies for JSON endpoints
const maxJSONBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps sentinel errors onto HTTP statuses. The
// response body carries the outer message, which wraps the sentinel
// with the specific cause.
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, models.ErrInvalidQuantity):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrCartEmpty):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrCartItemNotFound),
		errors.Is(err, models.ErrRegistrationNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, models.ErrRegistrationPending),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrDuplicateEntry):
		status = http.StatusConflict
		message = err.Error()
	}

	respondError(w, status, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

func urlParamInt(r *http.Request, name string) (int, error) {
	return strconv.Atoi(chi.URLParam(r, name))
}

func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func currentUser(r *http.Request) *models.User {
	return middleware.GetUserFromContext(r.Context())
}

// sessionCart manages the cart stored JSON-encoded in the cookie
// session. An unreadable or expired cart loads as a fresh empty one.
type sessionCart struct {
	store sessions.Store
}

func (sc *sessionCart) load(r *http.Request) (*sessions.Session, *models.Cart) {
	session, _ := sc.store.Get(r, middleware.SessionName)

	raw, ok := session.Values[cartSessionKey].([]byte)
	if !ok || len(raw) == 0 {
		return session, models.NewCart()
	}

	cart := &models.Cart{}
	if err := json.Unmarshal(raw, cart); err != nil || cart.IsExpired() {
		return session, models.NewCart()
	}
	return session, cart
}

func (sc *sessionCart) save(w http.ResponseWriter, r *http.Request, session *sessions.Session, cart *models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	session.Values[cartSessionKey] = raw
	return session.Save(r, w)
}

// cartView is the cart representation every cart-touching endpoint
// returns: the items plus where the flow goes next
type cartView struct {
	Items     []models.CartItem `json:"items"`
	Total     int               `json:"total"`
	NextPath  string            `json:"next_path"`
	ExpiresAt int64             `json:"expires_at"`
}

func newCartView(cart *models.Cart) cartView {
	view := cartView{
		Items:     cart.Items,
		Total:     cart.TotalAmount(),
		ExpiresAt: cart.ExpiresAt,
	}
	if !cart.IsEmpty() {
		view.NextPath = cart.NextRegistrationPath()
	}
	return view
}

// registrationNotFound is the payload for stale registration deep links:
// the item left the cart, so the client should leave the form
func registrationNotFound(w http.ResponseWriter, err error) {
	respondJSON(w, http.StatusNotFound, map[string]string{
		"error":    err.Error(),
		"redirect": "/",
	})
}

func respondRegistrationError(w http.ResponseWriter, err error) {
	if errors.Is(err, models.ErrCartItemNotFound) {
		registrationNotFound(w, err)
		return
	}
	respondServiceError(w, err)
}

func checkoutConflict(w http.ResponseWriter, err error) bool {
	var pending *services.RegistrationPendingError
	if errors.As(err, &pending) {
		respondJSON(w, http.StatusConflict, map[string]string{
			"error":     err.Error(),
			"next_path": pending.NextPath,
		})
		return true
	}
	return false
}
