package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/middleware"
	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// AuthService is the slice of the auth service the handler needs
type AuthService interface {
	Register(ctx context.Context, req *models.UserCreateRequest) (*models.User, error)
	Login(ctx context.Context, req *models.UserLoginRequest) (*models.User, error)
	ChangePassword(ctx context.Context, userID int, req *services.PasswordChangeRequest) error
}

// AuthHandler handles registration, login and session management
type AuthHandler struct {
	auth   AuthService
	store  sessions.Store
	logger zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService, store sessions.Store, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		store:  store,
		logger: logger,
	}
}

// Register creates an account and logs the new user in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req := &models.UserCreateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.establishSession(w, r, user.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to save session after registration")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info().Int("user_id", user.ID).Msg("user registered")
	respondJSON(w, http.StatusCreated, user)
}

// Login verifies credentials and establishes a session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req := &models.UserLoginRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		respondServiceError(w, err)
		return
	}

	if err := h.establishSession(w, r, user.ID); err != nil {
		h.logger.Error().Err(err).Msg("failed to save session after login")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Logout drops the session, cart included
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.store.Get(r, middleware.SessionName)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.logger.Error().Err(err).Msg("failed to clear session on logout")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, currentUser(r))
}

// ChangePassword updates the authenticated user's password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req := &services.PasswordChangeRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.auth.ChangePassword(r.Context(), currentUser(r).ID, req); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) establishSession(w http.ResponseWriter, r *http.Request, userID int) error {
	session, _ := h.store.Get(r, middleware.SessionName)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}
