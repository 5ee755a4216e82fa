package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// RegistrationRepository handles vendor and volunteer registration data
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = "id, user_id, event_id, product_id, cart_item_id, kind, data, status, order_id, created_at, updated_at"

func scanRegistration(row interface {
	Scan(dest ...interface{}) error
}) (*models.Registration, error) {
	reg := &models.Registration{}
	var data []byte
	var orderID sql.NullInt64

	err := row.Scan(
		&reg.ID,
		&reg.UserID,
		&reg.EventID,
		&reg.ProductID,
		&reg.CartItemID,
		&reg.Kind,
		&data,
		&reg.Status,
		&orderID,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &reg.Data); err != nil {
			return nil, fmt.Errorf("failed to decode registration data: %w", err)
		}
	}
	if reg.Data == nil {
		reg.Data = map[string]string{}
	}

	if orderID.Valid {
		id := int(orderID.Int64)
		reg.OrderID = &id
	}

	return reg, nil
}

// Upsert saves a registration for a cart item. Re-submitting the same
// cart item replaces the previous form data.
func (r *RegistrationRepository) Upsert(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	data, err := json.Marshal(reg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration data: %w", err)
	}

	query := `
		INSERT INTO registrations (user_id, event_id, product_id, cart_item_id, kind, data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, cart_item_id) DO UPDATE
		SET event_id = EXCLUDED.event_id,
		    product_id = EXCLUDED.product_id,
		    kind = EXCLUDED.kind,
		    data = EXCLUDED.data,
		    status = EXCLUDED.status,
		    updated_at = EXCLUDED.updated_at
		RETURNING ` + registrationColumns

	now := time.Now()
	saved, err := scanRegistration(r.db.QueryRowContext(
		ctx,
		query,
		reg.UserID,
		reg.EventID,
		reg.ProductID,
		reg.CartItemID,
		reg.Kind,
		data,
		models.RegistrationRecordPending,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to save registration: %w", err)
	}

	return saved, nil
}

// GetByID retrieves a registration by ID
func (r *RegistrationRepository) GetByID(ctx context.Context, id int) (*models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE id = $1"

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	return reg, nil
}

// GetByUserAndCartItem retrieves the registration a user saved for a
// specific cart item
func (r *RegistrationRepository) GetByUserAndCartItem(ctx context.Context, userID int, cartItemID string) (*models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE user_id = $1 AND cart_item_id = $2"

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, userID, cartItemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get registration for cart item: %w", err)
	}

	return reg, nil
}

// GetLatestByUserAndKind retrieves a user's most recent registration of
// the given kind, used to pre-fill forms
func (r *RegistrationRepository) GetLatestByUserAndKind(ctx context.Context, userID int, kind models.RegistrationKind) (*models.Registration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM registrations
		WHERE user_id = $1 AND kind = $2
		ORDER BY updated_at DESC
		LIMIT 1`

	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, userID, kind))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to get latest registration: %w", err)
	}

	return reg, nil
}

// GetByEvent retrieves registrations for an event, optionally filtered
// by kind and status
func (r *RegistrationRepository) GetByEvent(ctx context.Context, eventID int, kind models.RegistrationKind, status models.RegistrationRecordStatus) ([]*models.Registration, error) {
	query := "SELECT " + registrationColumns + " FROM registrations WHERE event_id = $1"
	args := []interface{}{eventID}
	argIndex := 2

	if kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argIndex)
		args = append(args, kind)
		argIndex++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations for event: %w", err)
	}
	defer rows.Close()

	var regs []*models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registration: %w", err)
		}
		regs = append(regs, reg)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	return regs, nil
}

// DeleteOrphaned removes pending registrations whose cart items never
// became orders and are older than the given age
func (r *RegistrationRepository) DeleteOrphaned(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.db.ExecContext(ctx, `
		DELETE FROM registrations
		WHERE status = $1 AND order_id IS NULL AND updated_at < $2`,
		models.RegistrationRecordPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned registrations: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
