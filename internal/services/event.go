package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
	"github.com/jessejferrell/Events-Hub-sub001/internal/repositories"
)

// EventRepository interface for event data operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id int) (*models.Event, error)
	GetBySlug(ctx context.Context, slug string) (*models.Event, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Update(ctx context.Context, id int, req *models.EventUpdateRequest) (*models.Event, error)
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	UpdateImage(ctx context.Context, id int, imageURL, imageKey string) error
	Delete(ctx context.Context, id int) error
	Search(ctx context.Context, filters repositories.EventSearchFilters) ([]*models.Event, int, error)
}

// FlyerImageService is the slice of the image pipeline the event
// service needs for flyer uploads
type FlyerImageService interface {
	UploadImage(ctx context.Context, reader io.Reader, filename string) (*ImageUploadResult, error)
	DeleteImage(ctx context.Context, keyPrefix string) error
}

// EventService handles event-related business logic
type EventService struct {
	eventRepo EventRepository
	images    FlyerImageService
	logger    zerolog.Logger
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepository, images FlyerImageService, logger zerolog.Logger) *EventService {
	return &EventService{
		eventRepo: eventRepo,
		images:    images,
		logger:    logger,
	}
}

// EventListRequest represents a request to list or search events
type EventListRequest struct {
	Query        string `json:"query"`
	UpcomingOnly bool   `json:"upcoming_only"`
	Page         int    `json:"page"`
	PageSize     int    `json:"page_size"`
}

// EventListResponse represents a paginated event listing
type EventListResponse struct {
	Events     []*models.Event `json:"events"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	TotalPages int             `json:"total_pages"`
}

// CreateEvent creates a new draft event for the given organizer. The
// slug is derived from the title and made unique with a numeric suffix
// when taken.
func (s *EventService) CreateEvent(ctx context.Context, organizer *models.User, req *models.EventCreateRequest) (*models.Event, error) {
	if !organizer.CanCreateEvents() {
		return nil, fmt.Errorf("%w: only organizers can create events", models.ErrUnauthorized)
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	slug, err := s.uniqueSlug(ctx, models.GenerateSlug(req.Title))
	if err != nil {
		return nil, fmt.Errorf("failed to generate slug: %w", err)
	}

	event := &models.Event{
		OrganizerID: organizer.ID,
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      models.StatusDraft,
	}

	created, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return created, nil
}

// UpdateEvent updates an event's details. Only the owning organizer or
// an admin may edit, and the slug stays stable across title changes so
// published links keep working.
func (s *EventService) UpdateEvent(ctx context.Context, user *models.User, eventID int, req *models.EventUpdateRequest) (*models.Event, error) {
	event, err := s.authorizeEventAccess(ctx, user, eventID)
	if err != nil {
		return nil, err
	}

	if !event.CanBeEdited() {
		return nil, fmt.Errorf("cancelled events cannot be edited")
	}

	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidInput, err.Error())
	}

	updated, err := s.eventRepo.Update(ctx, eventID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return updated, nil
}

// PublishEvent makes a draft event publicly visible
func (s *EventService) PublishEvent(ctx context.Context, user *models.User, eventID int) error {
	event, err := s.authorizeEventAccess(ctx, user, eventID)
	if err != nil {
		return err
	}

	if !event.CanBePublished() {
		return fmt.Errorf("only draft events can be published")
	}

	if err := s.eventRepo.UpdateStatus(ctx, eventID, models.StatusPublished); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	s.logger.Info().Int("event_id", eventID).Str("slug", event.Slug).Msg("event published")
	return nil
}

// CancelEvent cancels a published or draft event. Orders already paid
// stay on record; cancellation only stops new sales.
func (s *EventService) CancelEvent(ctx context.Context, user *models.User, eventID int) error {
	event, err := s.authorizeEventAccess(ctx, user, eventID)
	if err != nil {
		return err
	}

	if !event.CanBeCancelled() {
		return fmt.Errorf("event is already cancelled")
	}

	if err := s.eventRepo.UpdateStatus(ctx, eventID, models.StatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel event: %w", err)
	}

	s.logger.Info().Int("event_id", eventID).Str("slug", event.Slug).Msg("event cancelled")
	return nil
}

// DeleteEvent removes a draft event that never sold anything
func (s *EventService) DeleteEvent(ctx context.Context, user *models.User, eventID int) error {
	event, err := s.authorizeEventAccess(ctx, user, eventID)
	if err != nil {
		return err
	}

	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		return err
	}

	if event.ImageKey != "" {
		if err := s.images.DeleteImage(ctx, event.ImageKey); err != nil {
			s.logger.Warn().Err(err).Str("image_key", event.ImageKey).Msg("failed to delete event flyer")
		}
	}

	return nil
}

// GetEvent retrieves an event by id without visibility filtering,
// for owner and admin views
func (s *EventService) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, eventID)
}

// GetPublicEventBySlug retrieves an event for the public event page.
// Drafts are only visible to their organizer and admins; everyone else
// gets not-found rather than a hint that the event exists.
func (s *EventService) GetPublicEventBySlug(ctx context.Context, slug string, viewer *models.User) (*models.Event, error) {
	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if event.Status == models.StatusPublished || event.Status == models.StatusCancelled {
		return event, nil
	}

	if viewer != nil && (viewer.IsAdmin() || viewer.ID == event.OrganizerID) {
		return event, nil
	}

	return nil, models.ErrEventNotFound
}

// ListPublished lists published events for public browsing, newest
// start date last
func (s *EventService) ListPublished(ctx context.Context, req *EventListRequest) (*EventListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	filters := repositories.EventSearchFilters{
		Status: models.StatusPublished,
		Query:  req.Query,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		SortBy: "start_date",
	}

	if req.UpcomingOnly {
		now := time.Now()
		filters.From = &now
	}

	events, total, err := s.eventRepo.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return &EventListResponse{
		Events:     events,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// ListByOrganizer lists an organizer's own events, drafts included
func (s *EventService) ListByOrganizer(ctx context.Context, organizerID, page, pageSize int) (*EventListResponse, error) {
	page, pageSize = normalizePage(page, pageSize)

	filters := repositories.EventSearchFilters{
		OrganizerID: organizerID,
		Limit:       pageSize,
		Offset:      (page - 1) * pageSize,
		SortBy:      "created_at",
		SortDesc:    true,
	}

	events, total, err := s.eventRepo.Search(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizer events: %w", err)
	}

	return &EventListResponse{
		Events:     events,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

// UploadFlyer processes an uploaded flyer image, stores it with its
// resized variants, and records the public URL on the event. A previous
// flyer is deleted after the replacement is in place.
func (s *EventService) UploadFlyer(ctx context.Context, user *models.User, eventID int, reader io.Reader, filename string) (*models.Event, error) {
	event, err := s.authorizeEventAccess(ctx, user, eventID)
	if err != nil {
		return nil, err
	}

	result, err := s.images.UploadImage(ctx, reader, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to upload flyer: %w", err)
	}

	if err := s.eventRepo.UpdateImage(ctx, eventID, result.Original.URL, result.KeyPrefix); err != nil {
		// The event row was not updated; remove the orphaned upload
		if cleanupErr := s.images.DeleteImage(ctx, result.KeyPrefix); cleanupErr != nil {
			s.logger.Warn().Err(cleanupErr).Str("image_key", result.KeyPrefix).Msg("failed to clean up orphaned flyer upload")
		}
		return nil, fmt.Errorf("failed to save flyer: %w", err)
	}

	if event.ImageKey != "" && event.ImageKey != result.KeyPrefix {
		if err := s.images.DeleteImage(ctx, event.ImageKey); err != nil {
			s.logger.Warn().Err(err).Str("image_key", event.ImageKey).Msg("failed to delete replaced flyer")
		}
	}

	return s.eventRepo.GetByID(ctx, eventID)
}

// authorizeEventAccess loads an event and checks the user may manage it
func (s *EventService) authorizeEventAccess(ctx context.Context, user *models.User, eventID int) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !user.IsAdmin() && event.OrganizerID != user.ID {
		return nil, fmt.Errorf("%w: event belongs to another organizer", models.ErrUnauthorized)
	}

	return event, nil
}

// uniqueSlug appends a numeric suffix until the slug is free
func (s *EventService) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == "" {
		base = "event"
	}

	slug := base
	for i := 2; i <= 50; i++ {
		exists, err := s.eventRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}

	return "", errors.New("could not find a free slug")
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
