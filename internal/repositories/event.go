package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// EventRepository handles event data operations
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// EventSearchFilters represents filters for event search
type EventSearchFilters struct {
	OrganizerID int
	Status      models.EventStatus
	Query       string // matches title or location
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
	SortBy      string // "start_date", "created_at", "title"
	SortDesc    bool
}

// Create persists a new event. The slug must already be set and unique.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		INSERT INTO events (organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at`

	now := time.Now()
	created := &models.Event{}

	err := r.db.QueryRowContext(
		ctx,
		query,
		event.OrganizerID,
		event.Title,
		event.Slug,
		event.Description,
		event.Location,
		event.StartDate,
		event.EndDate,
		event.ImageURL,
		event.ImageKey,
		event.Status,
		now,
		now,
	).Scan(
		&created.ID,
		&created.OrganizerID,
		&created.Title,
		&created.Slug,
		&created.Description,
		&created.Location,
		&created.StartDate,
		&created.EndDate,
		&created.ImageURL,
		&created.ImageKey,
		&created.Status,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, models.ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	return created, nil
}

// GetByID retrieves an event by ID
func (r *EventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	query := `
		SELECT id, organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at
		FROM events
		WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.ImageURL,
		&event.ImageKey,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// GetBySlug retrieves an event by its public slug
func (r *EventRepository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	query := `
		SELECT id, organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at
		FROM events
		WHERE slug = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.ImageURL,
		&event.ImageKey,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by slug: %w", err)
	}

	return event, nil
}

// SlugExists reports whether an event already uses the slug
func (r *EventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM events WHERE slug = $1)", slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

// Update updates an event's editable fields
func (r *EventRepository) Update(ctx context.Context, id int, req *models.EventUpdateRequest) (*models.Event, error) {
	query := `
		UPDATE events
		SET title = $2, description = $3, location = $4, start_date = $5, end_date = $6, updated_at = $7
		WHERE id = $1
		RETURNING id, organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at`

	event := &models.Event{}
	err := r.db.QueryRowContext(
		ctx,
		query,
		id,
		req.Title,
		req.Description,
		req.Location,
		req.StartDate,
		req.EndDate,
		time.Now(),
	).Scan(
		&event.ID,
		&event.OrganizerID,
		&event.Title,
		&event.Slug,
		&event.Description,
		&event.Location,
		&event.StartDate,
		&event.EndDate,
		&event.ImageURL,
		&event.ImageKey,
		&event.Status,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	return event, nil
}

// UpdateStatus updates only the event status
func (r *EventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	query := `UPDATE events SET status = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update event status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrEventNotFound
	}

	return nil
}

// UpdateImage stores the flyer image location for an event
func (r *EventRepository) UpdateImage(ctx context.Context, id int, imageURL, imageKey string) error {
	query := `UPDATE events SET image_url = $2, image_key = $3, updated_at = $4 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, imageURL, imageKey, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update event image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrEventNotFound
	}

	return nil
}

// Delete deletes an event (only drafts without orders)
func (r *EventRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var status models.EventStatus
	var orderCount int
	err = tx.QueryRowContext(ctx, `
		SELECT e.status, COUNT(o.id)
		FROM events e
		LEFT JOIN orders o ON e.id = o.event_id
		WHERE e.id = $1
		GROUP BY e.status`, id).Scan(&status, &orderCount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrEventNotFound
		}
		return fmt.Errorf("failed to check event status: %w", err)
	}

	if status != models.StatusDraft {
		return fmt.Errorf("can only delete draft events")
	}
	if orderCount > 0 {
		return fmt.Errorf("cannot delete event with existing orders")
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit event deletion: %w", err)
	}

	return nil
}

// Search searches for events with filters and pagination
func (r *EventRepository) Search(ctx context.Context, filters EventSearchFilters) ([]*models.Event, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.OrganizerID > 0 {
		conditions = append(conditions, fmt.Sprintf("organizer_id = $%d", argIndex))
		args = append(args, filters.OrganizerID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.Query != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR location ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filters.Query+"%")
		argIndex++
	}

	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_date >= $%d", argIndex))
		args = append(args, *filters.From)
		argIndex++
	}

	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", argIndex))
		args = append(args, *filters.To)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	orderBy := "ORDER BY start_date ASC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}

		switch filters.SortBy {
		case "start_date", "created_at", "title":
			orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM events %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get event count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, organizer_id, title, slug, description, location, start_date, end_date, image_url, image_key, status, created_at, updated_at
		FROM events
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID,
			&event.OrganizerID,
			&event.Title,
			&event.Slug,
			&event.Description,
			&event.Location,
			&event.StartDate,
			&event.EndDate,
			&event.ImageURL,
			&event.ImageKey,
			&event.Status,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}

	return events, total, nil
}
