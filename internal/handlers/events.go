package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/services"
)

// maxFlyerUpload caps multipart flyer uploads
const maxFlyerUpload = 10 << 20

// EventService is the slice of the event service the handler needs
type EventService interface {
	CreateEvent(ctx context.Context, organizer *models.User, req *models.EventCreateRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, user *models.User, eventID int, req *models.EventUpdateRequest) (*models.Event, error)
	PublishEvent(ctx context.Context, user *models.User, eventID int) error
	CancelEvent(ctx context.Context, user *models.User, eventID int) error
	DeleteEvent(ctx context.Context, user *models.User, eventID int) error
	GetPublicEventBySlug(ctx context.Context, slug string, viewer *models.User) (*models.Event, error)
	ListPublished(ctx context.Context, req *services.EventListRequest) (*services.EventListResponse, error)
	ListByOrganizer(ctx context.Context, organizerID, page, pageSize int) (*services.EventListResponse, error)
	UploadFlyer(ctx context.Context, user *models.User, eventID int, reader io.Reader, filename string) (*models.Event, error)
}

// EventHandler serves the public event pages and the organizer's event
// management endpoints
type EventHandler struct {
	events EventService
	logger zerolog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(events EventService, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		events: events,
		logger: logger,
	}
}

// List returns published events with optional text search, upcoming
// filter and pagination
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	req := &services.EventListRequest{
		Query:        r.URL.Query().Get("q"),
		UpcomingOnly: r.URL.Query().Get("upcoming") == "true",
		Page:         queryInt(r, "page"),
		PageSize:     queryInt(r, "page_size"),
	}

	resp, err := h.events.ListPublished(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Get returns one event by slug. Unpublished events are only visible to
// their organizer and admins.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	event, err := h.events.GetPublicEventBySlug(r.Context(), slug, currentUser(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// Create creates a new draft event for the authenticated organizer
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := &models.EventCreateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.events.CreateEvent(r.Context(), currentUser(r), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, event)
}

// ListOwn returns the authenticated organizer's events, drafts included
func (h *EventHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	resp, err := h.events.ListByOrganizer(r.Context(), currentUser(r).ID, queryInt(r, "page"), queryInt(r, "page_size"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// Update edits an event's details
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	req := &models.EventUpdateRequest{}
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), currentUser(r), eventID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}

// Publish makes a draft event publicly visible
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.PublishEvent)
}

// Cancel cancels an event
func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.CancelEvent)
}

// Delete removes a draft event
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.events.DeleteEvent)
}

func (h *EventHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, *models.User, int) error) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	if err := op(r.Context(), currentUser(r), eventID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadFlyer accepts a multipart flyer image, runs it through the
// image pipeline and stores the resulting URL on the event
func (h *EventHandler) UploadFlyer(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFlyerUpload)
	if err := r.ParseMultipartForm(maxFlyerUpload); err != nil {
		respondError(w, http.StatusBadRequest, "flyer upload too large or malformed")
		return
	}

	file, header, err := r.FormFile("flyer")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing flyer file")
		return
	}
	defer file.Close()

	event, err := h.events.UploadFlyer(r.Context(), currentUser(r), eventID, file, header.Filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, event)
}
