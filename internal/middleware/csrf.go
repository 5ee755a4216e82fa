package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const csrfTokenKey = "csrf_token"

// CSRFHeader carries the token on state-changing requests and exposes
// it to clients on responses
const CSRFHeader = "X-CSRF-Token"

// CSRFMiddleware implements double-submit protection for the
// cookie-session API. Clients read the token from the response header
// of any safe request and echo it on writes.
type CSRFMiddleware struct {
	store  sessions.Store
	logger zerolog.Logger
}

// NewCSRFMiddleware creates a new CSRF middleware
func NewCSRFMiddleware(store sessions.Store, logger zerolog.Logger) *CSRFMiddleware {
	return &CSRFMiddleware{
		store:  store,
		logger: logger,
	}
}

// EnsureCSRFToken plants a token in the session if none exists and
// mirrors it into the response header so clients can pick it up
func (m *CSRFMiddleware) EnsureCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.store.Get(r, SessionName)
		if err == nil {
			token, ok := session.Values[csrfTokenKey].(string)
			if !ok || token == "" {
				token = generateCSRFToken()
				session.Values[csrfTokenKey] = token
				if err := session.Save(r, w); err != nil {
					m.logger.Warn().Err(err).Msg("failed to save csrf token")
				}
			}
			w.Header().Set(CSRFHeader, token)
		}

		next.ServeHTTP(w, r)
	})
}

// CSRFProtection rejects state-changing requests whose header token
// does not match the session token
func (m *CSRFMiddleware) CSRFProtection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r, SessionName)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "session error")
			return
		}

		sessionToken, _ := session.Values[csrfTokenKey].(string)
		requestToken := r.Header.Get(CSRFHeader)

		if sessionToken == "" || subtle.ConstantTimeCompare([]byte(sessionToken), []byte(requestToken)) != 1 {
			m.logger.Warn().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("csrf token mismatch")
			writeJSONError(w, http.StatusForbidden, "csrf token mismatch")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func generateCSRFToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("csrf: cannot read random bytes: " + err.Error())
	}
	return hex.EncodeToString(b)
}
