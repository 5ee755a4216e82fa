package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jessejferrell/Events-Hub-sub001/internal/models"
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// OrderSearchFilters represents filters for order search
type OrderSearchFilters struct {
	UserID   int
	EventID  int
	Status   models.OrderStatus
	Query    string // matches order number, and buyer email on joined queries
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
	SortBy   string // "created_at", "total_amount", "status"
	SortDesc bool
}

// OrderWithDetails represents an order with buyer and event details
type OrderWithDetails struct {
	*models.Order
	EventTitle string `json:"event_title"`
	BuyerName  string `json:"buyer_name"`
	BuyerEmail string `json:"buyer_email"`
	ItemCount  int    `json:"item_count"`
}

const orderColumns = "id, user_id, event_id, order_number, total_amount, currency, status, checkout_session_id, billing_email, billing_name, created_at, updated_at"

func scanOrder(row interface {
	Scan(dest ...interface{}) error
}) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.EventID,
		&order.OrderNumber,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.CheckoutSessionID,
		&order.BillingEmail,
		&order.BillingName,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create creates a pending order together with its line items in one
// transaction
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, items []*models.OrderItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, models.ErrCartEmpty
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Generate unique order number (retry on collision)
	orderNumber := models.GenerateOrderNumber()
	for i := 0; i < 5; i++ {
		var exists bool
		err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM orders WHERE order_number = $1)", orderNumber).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("failed to check order number uniqueness: %w", err)
		}
		if !exists {
			break
		}
		orderNumber = models.GenerateOrderNumber()
	}

	query := `
		INSERT INTO orders (user_id, event_id, order_number, total_amount, currency, status, billing_email, billing_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + orderColumns

	now := time.Now()
	created, err := scanOrder(tx.QueryRowContext(
		ctx,
		query,
		order.UserID,
		order.EventID,
		orderNumber,
		order.TotalAmount,
		order.Currency,
		models.OrderPending,
		order.BillingEmail,
		order.BillingName,
		now,
		now,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for _, item := range items {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_type, cart_item_id, name, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			created.ID,
			item.ProductID,
			item.ProductType,
			item.CartItemID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to create order item: %w", err)
		}
		item.OrderID = created.ID
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return created, nil
}

// GetByID retrieves an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id int) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = $1"

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return order, nil
}

// GetByOrderNumber retrieves an order by order number
func (r *OrderRepository) GetByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE order_number = $1"

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, orderNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by number: %w", err)
	}

	return order, nil
}

// GetByCheckoutSession retrieves an order by its checkout session id
func (r *OrderRepository) GetByCheckoutSession(ctx context.Context, sessionID string) (*models.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE checkout_session_id = $1"

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by checkout session: %w", err)
	}

	return order, nil
}

// GetItems retrieves the line items for an order
func (r *OrderRepository) GetItems(ctx context.Context, orderID int) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_type, cart_item_id, name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductType,
			&item.CartItemID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// GetTickets retrieves the tickets issued for an order
func (r *OrderRepository) GetTickets(ctx context.Context, orderID int) ([]*models.Ticket, error) {
	query := `
		SELECT id, order_id, order_item_id, code, status, created_at
		FROM tickets
		WHERE order_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		ticket := &models.Ticket{}
		err := rows.Scan(
			&ticket.ID,
			&ticket.OrderID,
			&ticket.OrderItemID,
			&ticket.Code,
			&ticket.Status,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// SetCheckoutSession stores the checkout session id on a pending order
func (r *OrderRepository) SetCheckoutSession(ctx context.Context, orderID int, sessionID string) error {
	query := `UPDATE orders SET checkout_session_id = $2, updated_at = $3 WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, orderID, sessionID, time.Now(), models.OrderPending)
	if err != nil {
		return fmt.Errorf("failed to set checkout session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// MarkPaid completes payment for an order in a single transaction: the
// order becomes paid, product stock is decremented, the buyer's
// registrations are confirmed and tickets are issued. Calling it again
// for an already paid order is a no-op.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int
	var status models.OrderStatus
	err = tx.QueryRowContext(ctx, "SELECT user_id, status FROM orders WHERE id = $1 FOR UPDATE", orderID).Scan(&userID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrOrderNotFound
		}
		return fmt.Errorf("failed to lock order: %w", err)
	}

	// Duplicate webhook delivery
	if status == models.OrderPaid {
		return nil
	}
	if status != models.OrderPending {
		return fmt.Errorf("order cannot be paid in current status: %s", status)
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1",
		orderID, models.OrderPaid, time.Now()); err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	items, err := lockOrderItems(ctx, tx, orderID)
	if err != nil {
		return err
	}

	for _, item := range items {
		// Conditional update keeps the stock guard atomic; NULL
		// quantity means unlimited
		result, err := tx.ExecContext(ctx, `
			UPDATE products
			SET sold = sold + $2, updated_at = $3
			WHERE id = $1 AND (quantity IS NULL OR sold + $2 <= quantity)`,
			item.ProductID, item.Quantity, time.Now())
		if err != nil {
			return fmt.Errorf("failed to update product stock: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return models.ErrInsufficientStock
		}

		if item.ProductType.RequiresRegistration() && item.CartItemID != "" {
			if _, err = tx.ExecContext(ctx, `
				UPDATE registrations
				SET status = $3, order_id = $4, updated_at = $5
				WHERE user_id = $1 AND cart_item_id = $2`,
				userID, item.CartItemID, models.RegistrationRecordConfirmed, orderID, time.Now()); err != nil {
				return fmt.Errorf("failed to confirm registration: %w", err)
			}
		}

		if item.ProductType == models.ProductTicket {
			for unit := 0; unit < item.Quantity; unit++ {
				code := models.GenerateTicketCode()
				for i := 0; i < 5; i++ {
					var exists bool
					if err = tx.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM tickets WHERE code = $1)", code).Scan(&exists); err != nil {
						return fmt.Errorf("failed to check ticket code uniqueness: %w", err)
					}
					if !exists {
						break
					}
					code = models.GenerateTicketCode()
				}

				if _, err = tx.ExecContext(ctx, `
					INSERT INTO tickets (order_id, order_item_id, code, status, created_at)
					VALUES ($1, $2, $3, $4, $5)`,
					orderID, item.ID, code, models.TicketActive, time.Now()); err != nil {
					return fmt.Errorf("failed to create ticket: %w", err)
				}
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order payment: %w", err)
	}

	return nil
}

func lockOrderItems(ctx context.Context, tx *sql.Tx, orderID int) ([]*models.OrderItem, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_type, cart_item_id, name, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductType,
			&item.CartItemID,
			&item.Name,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

// MarkFailed marks a pending order as failed
func (r *OrderRepository) MarkFailed(ctx context.Context, orderID int) error {
	return r.transitionFromPending(ctx, orderID, models.OrderFailed)
}

// Cancel cancels a pending order
func (r *OrderRepository) Cancel(ctx context.Context, orderID int) error {
	return r.transitionFromPending(ctx, orderID, models.OrderCancelled)
}

func (r *OrderRepository) transitionFromPending(ctx context.Context, orderID int, status models.OrderStatus) error {
	query := `UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, orderID, status, time.Now(), models.OrderPending)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		order, err := r.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		return fmt.Errorf("order cannot transition to %s from %s", status, order.Status)
	}

	return nil
}

// CancelExpired cancels pending orders older than the given age and
// returns how many were cancelled
func (r *OrderRepository) CancelExpired(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE status = $3 AND created_at < $4`,
		models.OrderCancelled, time.Now(), models.OrderPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel expired orders: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// GetByUser retrieves orders for a specific user
func (r *OrderRepository) GetByUser(ctx context.Context, userID int, limit, offset int) ([]*models.Order, int, error) {
	filters := OrderSearchFilters{
		UserID:   userID,
		Limit:    limit,
		Offset:   offset,
		SortBy:   "created_at",
		SortDesc: true,
	}

	return r.Search(ctx, filters)
}

// Search searches for orders with filters and pagination
func (r *OrderRepository) Search(ctx context.Context, filters OrderSearchFilters) ([]*models.Order, int, error) {
	whereClause, args, argIndex := buildOrderFilters(filters, "")

	orderBy := "ORDER BY created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}

		switch filters.SortBy {
		case "created_at", "total_amount", "status":
			orderBy = fmt.Sprintf("ORDER BY %s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM orders %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get order count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM orders
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		orderColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, total, nil
}

// GetOrdersWithDetails retrieves orders joined with buyer and event details
func (r *OrderRepository) GetOrdersWithDetails(ctx context.Context, filters OrderSearchFilters) ([]*OrderWithDetails, int, error) {
	whereClause, args, argIndex := buildOrderFilters(filters, "o.")

	orderBy := "ORDER BY o.created_at DESC"
	if filters.SortBy != "" {
		direction := "ASC"
		if filters.SortDesc {
			direction = "DESC"
		}

		switch filters.SortBy {
		case "created_at", "total_amount", "status":
			orderBy = fmt.Sprintf("ORDER BY o.%s %s", filters.SortBy, direction)
		}
	}

	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM orders o
		JOIN events e ON o.event_id = e.id
		JOIN users u ON o.user_id = u.id
		%s`, whereClause)

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to get order count: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			o.id, o.user_id, o.event_id, o.order_number, o.total_amount, o.currency, o.status,
			o.checkout_session_id, o.billing_email, o.billing_name, o.created_at, o.updated_at,
			e.title AS event_title,
			u.first_name || ' ' || u.last_name AS buyer_name,
			u.email AS buyer_email,
			COUNT(oi.id) AS item_count
		FROM orders o
		JOIN events e ON o.event_id = e.id
		JOIN users u ON o.user_id = u.id
		LEFT JOIN order_items oi ON o.id = oi.order_id
		%s
		GROUP BY o.id, e.title, u.first_name, u.last_name, u.email
		%s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filters.Limit, filters.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders with details: %w", err)
	}
	defer rows.Close()

	var orders []*OrderWithDetails
	for rows.Next() {
		detail := &OrderWithDetails{Order: &models.Order{}}
		err := rows.Scan(
			&detail.Order.ID,
			&detail.Order.UserID,
			&detail.Order.EventID,
			&detail.Order.OrderNumber,
			&detail.Order.TotalAmount,
			&detail.Order.Currency,
			&detail.Order.Status,
			&detail.Order.CheckoutSessionID,
			&detail.Order.BillingEmail,
			&detail.Order.BillingName,
			&detail.Order.CreatedAt,
			&detail.Order.UpdatedAt,
			&detail.EventTitle,
			&detail.BuyerName,
			&detail.BuyerEmail,
			&detail.ItemCount,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order with details: %w", err)
		}
		orders = append(orders, detail)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders with details: %w", err)
	}

	return orders, total, nil
}

func buildOrderFilters(filters OrderSearchFilters, prefix string) (string, []interface{}, int) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filters.UserID > 0 {
		conditions = append(conditions, fmt.Sprintf("%suser_id = $%d", prefix, argIndex))
		args = append(args, filters.UserID)
		argIndex++
	}

	if filters.EventID > 0 {
		conditions = append(conditions, fmt.Sprintf("%sevent_id = $%d", prefix, argIndex))
		args = append(args, filters.EventID)
		argIndex++
	}

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("%sstatus = $%d", prefix, argIndex))
		args = append(args, filters.Status)
		argIndex++
	}

	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("%screated_at >= $%d", prefix, argIndex))
		args = append(args, *filters.DateFrom)
		argIndex++
	}

	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("%screated_at <= $%d", prefix, argIndex))
		args = append(args, *filters.DateTo)
		argIndex++
	}

	if filters.Query != "" {
		// Joined queries carry the buyer row, so the search can cover email too
		if prefix == "o." {
			conditions = append(conditions, fmt.Sprintf("(o.order_number ILIKE $%d OR u.email ILIKE $%d)", argIndex, argIndex))
		} else {
			conditions = append(conditions, fmt.Sprintf("order_number ILIKE $%d", argIndex))
		}
		args = append(args, "%"+filters.Query+"%")
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	return whereClause, args, argIndex
}

// OrderStatistics is an aggregate rollup over orders. TotalRevenue only
// counts paid orders, in cents.
type OrderStatistics struct {
	TotalOrders     int `json:"total_orders"`
	PaidOrders      int `json:"paid_orders"`
	PendingOrders   int `json:"pending_orders"`
	FailedOrders    int `json:"failed_orders"`
	CancelledOrders int `json:"cancelled_orders"`
	RefundedOrders  int `json:"refunded_orders"`
	TotalRevenue    int `json:"total_revenue"`
}

// GetOrderStatistics aggregates orders matching the filters, so totals
// line up with the rows a filtered listing returns. Pagination and sort
// fields are ignored.
func (r *OrderRepository) GetOrderStatistics(ctx context.Context, filters OrderSearchFilters) (*OrderStatistics, error) {
	whereClause, args, _ := buildOrderFilters(filters, "o.")

	query := fmt.Sprintf(`
		SELECT
			COUNT(*) AS total_orders,
			COUNT(CASE WHEN o.status = 'paid' THEN 1 END) AS paid_orders,
			COUNT(CASE WHEN o.status = 'pending' THEN 1 END) AS pending_orders,
			COUNT(CASE WHEN o.status = 'failed' THEN 1 END) AS failed_orders,
			COUNT(CASE WHEN o.status = 'cancelled' THEN 1 END) AS cancelled_orders,
			COUNT(CASE WHEN o.status = 'refunded' THEN 1 END) AS refunded_orders,
			COALESCE(SUM(CASE WHEN o.status = 'paid' THEN o.total_amount END), 0) AS total_revenue
		FROM orders o
		JOIN users u ON o.user_id = u.id
		%s`, whereClause)

	stats := &OrderStatistics{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalOrders,
		&stats.PaidOrders,
		&stats.PendingOrders,
		&stats.FailedOrders,
		&stats.CancelledOrders,
		&stats.RefundedOrders,
		&stats.TotalRevenue,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get order statistics: %w", err)
	}

	return stats, nil
}

// EventSummary is a per-event sales rollup. Revenue and units only
// count paid orders; events with no sales still appear with zeros.
type EventSummary struct {
	EventID       int    `json:"event_id"`
	EventTitle    string `json:"event_title"`
	OrganizerName string `json:"organizer_name"`
	PaidOrders    int    `json:"paid_orders"`
	UnitsSold     int    `json:"units_sold"`
	GrossRevenue  int    `json:"gross_revenue"`
}

// GetEventSummaries returns a sales rollup per event, optionally limited
// to orders created within [from, to], highest revenue first
func (r *OrderRepository) GetEventSummaries(ctx context.Context, from, to *time.Time) ([]*EventSummary, error) {
	// Date bounds live in the join condition so events without matching
	// orders keep their zero row
	joinClause := "LEFT JOIN orders o ON o.event_id = e.id AND o.status = 'paid'"
	var args []interface{}
	argIndex := 1

	if from != nil {
		joinClause += fmt.Sprintf(" AND o.created_at >= $%d", argIndex)
		args = append(args, *from)
		argIndex++
	}
	if to != nil {
		joinClause += fmt.Sprintf(" AND o.created_at <= $%d", argIndex)
		args = append(args, *to)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT
			e.id, e.title,
			u.first_name || ' ' || u.last_name AS organizer_name,
			COUNT(DISTINCT o.id) AS paid_orders,
			COALESCE(SUM(oi.quantity), 0) AS units_sold,
			COALESCE(SUM(oi.subtotal), 0) AS gross_revenue
		FROM events e
		JOIN users u ON e.organizer_id = u.id
		%s
		LEFT JOIN order_items oi ON oi.order_id = o.id
		GROUP BY e.id, e.title, u.first_name, u.last_name
		ORDER BY gross_revenue DESC, e.id`, joinClause)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get event summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*EventSummary
	for rows.Next() {
		summary := &EventSummary{}
		err := rows.Scan(
			&summary.EventID,
			&summary.EventTitle,
			&summary.OrganizerName,
			&summary.PaidOrders,
			&summary.UnitsSold,
			&summary.GrossRevenue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event summaries: %w", err)
	}

	return summaries, nil
}

// GetRevenueByProductType returns paid revenue and units grouped by
// product type for an event
func (r *OrderRepository) GetRevenueByProductType(ctx context.Context, eventID int) (map[models.ProductType]map[string]int, error) {
	query := `
		SELECT oi.product_type, COALESCE(SUM(oi.subtotal), 0), COALESCE(SUM(oi.quantity), 0)
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.event_id = $1 AND o.status = 'paid'
		GROUP BY oi.product_type`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue by product type: %w", err)
	}
	defer rows.Close()

	breakdown := make(map[models.ProductType]map[string]int)
	for rows.Next() {
		var ptype models.ProductType
		var revenue, units int
		if err := rows.Scan(&ptype, &revenue, &units); err != nil {
			return nil, fmt.Errorf("failed to scan revenue row: %w", err)
		}
		breakdown[ptype] = map[string]int{"revenue": revenue, "units": units}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revenue rows: %w", err)
	}

	return breakdown, nil
}

// GetOrderCount returns the total number of orders
func (r *OrderRepository) GetOrderCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get order count: %w", err)
	}
	return count, nil
}

// GetTotalRevenue returns the total revenue from all paid orders in cents
func (r *OrderRepository) GetTotalRevenue(ctx context.Context) (int, error) {
	var revenue int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'paid'").Scan(&revenue)
	if err != nil {
		return 0, fmt.Errorf("failed to get total revenue: %w", err)
	}
	return revenue, nil
}
