package models

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// EventStatus represents the status of an event
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// Event represents an event in the system
type Event struct {
	ID          int         `json:"id" db:"id"`
	OrganizerID int         `json:"organizer_id" db:"organizer_id"`
	Title       string      `json:"title" db:"title"`
	Slug        string      `json:"slug" db:"slug"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	StartDate   time.Time   `json:"start_date" db:"start_date"`
	EndDate     time.Time   `json:"end_date" db:"end_date"`
	ImageURL    string      `json:"image_url" db:"image_url"`
	ImageKey    string      `json:"image_key" db:"image_key"`
	Status      EventStatus `json:"status" db:"status"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	// Related data
	Organizer *User      `json:"organizer,omitempty"`
	Products  []*Product `json:"products,omitempty"`
}

// EventCreateRequest represents the data needed to create a new event
type EventCreateRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=10000"`
	Location    string    `json:"location" validate:"required,max=255"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// EventUpdateRequest represents the data that can be updated for an event
type EventUpdateRequest struct {
	Title       string    `json:"title" validate:"required,max=255"`
	Description string    `json:"description" validate:"max=10000"`
	Location    string    `json:"location" validate:"required,max=255"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

var slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

// Validate validates the event data
func (e *Event) Validate() error {
	if err := validateTitle(e.Title); err != nil {
		return err
	}

	if err := validateSlug(e.Slug); err != nil {
		return err
	}

	if err := validateDates(e.StartDate, e.EndDate); err != nil {
		return err
	}

	if err := validateLocation(e.Location); err != nil {
		return err
	}

	if err := validateEventStatus(e.Status); err != nil {
		return err
	}

	if err := validateDescription(e.Description); err != nil {
		return err
	}

	return validateImageURL(e.ImageURL)
}

// ValidateCreate validates event creation data
func (req *EventCreateRequest) Validate() error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}

	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return err
	}

	if err := validateLocation(req.Location); err != nil {
		return err
	}

	return validateDescription(req.Description)
}

// ValidateUpdate validates event update data
func (req *EventUpdateRequest) Validate() error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}

	if err := validateDates(req.StartDate, req.EndDate); err != nil {
		return err
	}

	if err := validateLocation(req.Location); err != nil {
		return err
	}

	return validateDescription(req.Description)
}

// validateTitle validates an event title
func validateTitle(title string) error {
	if title == "" {
		return errors.New("title is required")
	}

	if len(title) > 255 {
		return errors.New("title must be less than 255 characters")
	}

	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be only whitespace")
	}

	return nil
}

// validateSlug validates an event slug
func validateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}

	if len(slug) > 255 {
		return errors.New("slug must be less than 255 characters")
	}

	if !slugRegex.MatchString(slug) {
		return errors.New("slug can only contain lowercase letters, numbers, and hyphens")
	}

	if strings.HasPrefix(slug, "-") || strings.HasSuffix(slug, "-") {
		return errors.New("slug cannot start or end with a hyphen")
	}

	return nil
}

// validateDates validates event start and end dates
func validateDates(startDate, endDate time.Time) error {
	if startDate.IsZero() {
		return errors.New("start date is required")
	}

	if endDate.IsZero() {
		return errors.New("end date is required")
	}

	if startDate.After(endDate) {
		return errors.New("start date must be before end date")
	}

	// Don't allow events to be created in the past (with some tolerance for timezone issues)
	now := time.Now().Add(-1 * time.Hour)
	if startDate.Before(now) {
		return errors.New("start date cannot be in the past")
	}

	return nil
}

// validateLocation validates an event location
func validateLocation(location string) error {
	if location == "" {
		return errors.New("location is required")
	}

	if len(location) > 255 {
		return errors.New("location must be less than 255 characters")
	}

	if strings.TrimSpace(location) == "" {
		return errors.New("location cannot be only whitespace")
	}

	return nil
}

// validateEventStatus validates an event status
func validateEventStatus(status EventStatus) error {
	switch status {
	case StatusDraft, StatusPublished, StatusCancelled:
		return nil
	default:
		return errors.New("invalid event status")
	}
}

// validateDescription validates an event description
func validateDescription(description string) error {
	// Description is optional, but if provided, it should not be too long
	if len(description) > 10000 {
		return errors.New("description must be less than 10000 characters")
	}

	return nil
}

// validateImageURL validates an event image URL
func validateImageURL(imageURL string) error {
	if imageURL == "" {
		return nil
	}

	if len(imageURL) > 500 {
		return errors.New("image URL must be less than 500 characters")
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return errors.New("invalid image URL format")
	}

	// Allow relative paths (for local uploads) or HTTP/HTTPS URLs
	if parsedURL.Scheme != "" && parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("image URL must use HTTP or HTTPS protocol, or be a relative path")
	}

	return nil
}

// GenerateSlug derives a URL-safe slug from an event title
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)

	// Replace spaces and special characters with hyphens
	reg := regexp.MustCompile(`[^a-z0-9]+`)
	slug = reg.ReplaceAllString(slug, "-")

	// Remove leading and trailing hyphens
	slug = strings.Trim(slug, "-")

	// Replace multiple consecutive hyphens with single hyphen
	reg = regexp.MustCompile(`-+`)
	slug = reg.ReplaceAllString(slug, "-")

	return slug
}

// IsPublished returns true if the event is published
func (e *Event) IsPublished() bool {
	return e.Status == StatusPublished
}

// IsDraft returns true if the event is a draft
func (e *Event) IsDraft() bool {
	return e.Status == StatusDraft
}

// IsCancelled returns true if the event is cancelled
func (e *Event) IsCancelled() bool {
	return e.Status == StatusCancelled
}

// IsUpcoming returns true if the event has not started yet
func (e *Event) IsUpcoming() bool {
	return e.StartDate.After(time.Now())
}

// IsOngoing returns true if the event is currently running
func (e *Event) IsOngoing() bool {
	now := time.Now()
	return e.StartDate.Before(now) && e.EndDate.After(now)
}

// IsPast returns true if the event has ended
func (e *Event) IsPast() bool {
	return e.EndDate.Before(time.Now())
}

// CanBeEdited returns true if the event may still be modified
func (e *Event) CanBeEdited() bool {
	return e.Status == StatusDraft || e.Status == StatusPublished
}

// CanBeCancelled returns true if the event may be cancelled
func (e *Event) CanBeCancelled() bool {
	return e.Status == StatusPublished && !e.IsPast()
}

// CanBePublished returns true if the event may be published
func (e *Event) CanBePublished() bool {
	return e.Status == StatusDraft
}

// Duration returns the length of the event
func (e *Event) Duration() time.Duration {
	return e.EndDate.Sub(e.StartDate)
}

// HasImage returns true if the event has a flyer image
func (e *Event) HasImage() bool {
	return e.ImageURL != ""
}
