package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// ProductRepository handles product data operations
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row interface {
	Scan(dest ...interface{}) error
}) (*models.Product, error) {
	product := &models.Product{}
	var quantity sql.NullInt64

	err := row.Scan(
		&product.ID,
		&product.EventID,
		&product.Type,
		&product.Name,
		&product.Description,
		&product.Price,
		&quantity,
		&product.Sold,
		&product.Active,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if quantity.Valid {
		q := int(quantity.Int64)
		product.Quantity = &q
	}

	return product, nil
}

// Create creates a new product for an event
func (r *ProductRepository) Create(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (event_id, type, name, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, event_id, type, name, description, price, quantity, sold, active, created_at, updated_at`

	now := time.Now()

	var quantity sql.NullInt64
	if req.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*req.Quantity), Valid: true}
	}

	product, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		req.EventID,
		req.Type,
		req.Name,
		req.Description,
		req.Price,
		quantity,
		now,
		now,
	))

	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	query := `
		SELECT id, event_id, type, name, description, price, quantity, sold, active, created_at, updated_at
		FROM products
		WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// GetByEvent retrieves all products for an event in creation order
func (r *ProductRepository) GetByEvent(ctx context.Context, eventID int, activeOnly bool) ([]*models.Product, error) {
	query := `
		SELECT id, event_id, type, name, description, price, quantity, sold, active, created_at, updated_at
		FROM products
		WHERE event_id = $1`
	if activeOnly {
		query += " AND active = TRUE"
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products for event: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Update updates a product's editable fields
func (r *ProductRepository) Update(ctx context.Context, id int, req *models.ProductUpdateRequest) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, quantity = $5, active = $6, updated_at = $7
		WHERE id = $1
		RETURNING id, event_id, type, name, description, price, quantity, sold, active, created_at, updated_at`

	var quantity sql.NullInt64
	if req.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*req.Quantity), Valid: true}
	}

	product, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		id,
		req.Name,
		req.Description,
		req.Price,
		quantity,
		req.Active,
		time.Now(),
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete deletes a product that has not sold anything yet
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var sold int
	err = tx.QueryRowContext(ctx, "SELECT sold FROM products WHERE id = $1", id).Scan(&sold)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrProductNotFound
		}
		return fmt.Errorf("failed to check product: %w", err)
	}

	if sold > 0 {
		return fmt.Errorf("cannot delete product with existing sales")
	}

	if _, err = tx.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product deletion: %w", err)
	}

	return nil
}

// CountSoldByEvent returns units sold per product type for an event
func (r *ProductRepository) CountSoldByEvent(ctx context.Context, eventID int) (map[models.ProductType]int, error) {
	query := `
		SELECT type, COALESCE(SUM(sold), 0)
		FROM products
		WHERE event_id = $1
		GROUP BY type`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to count sold products: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ProductType]int)
	for rows.Next() {
		var ptype models.ProductType
		var sold int
		if err := rows.Scan(&ptype, &sold); err != nil {
			return nil, fmt.Errorf("failed to scan sold count: %w", err)
		}
		counts[ptype] = sold
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sold counts: %w", err)
	}

	return counts, nil
}
