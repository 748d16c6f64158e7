package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// PostgresOrderRepository persists orders and order items in PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *zap.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// CreateOrder inserts the order row and returns it with its generated id.
// Items are inserted separately; use DeleteOrder to compensate if a later
// item insert fails.
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, userID string) (*models.Order, error) {
	query := `
		INSERT INTO orders (user_id, is_approved, created_at)
		VALUES ($1, FALSE, $2)
		RETURNING id, created_at
	`

	order := &models.Order{
		UserID:     userID,
		IsApproved: false,
	}

	err := r.db.QueryRowContext(ctx, query, userID, time.Now().UTC()).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create order",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, &apperrors.PersistenceError{Op: "create order", Err: err}
	}

	r.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.String("user_id", userID),
	)

	return order, nil
}

// CreateOrderItem inserts a single order item and returns it with its id.
func (r *PostgresOrderRepository) CreateOrderItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	query := `
		INSERT INTO order_items (
			order_id, product_variation_id, product_id, shop_id,
			quantity, price, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		item.OrderID,
		item.ProductVariationID,
		item.ProductID,
		item.ShopID,
		item.Quantity,
		item.Price,
		int(item.Status),
	).Scan(&item.ID)

	if err != nil {
		r.logger.Error("failed to create order item",
			zap.Int64("order_id", item.OrderID),
			zap.String("product_variation_id", item.ProductVariationID),
			zap.Error(err),
		)
		return nil, &apperrors.PersistenceError{Op: "create order item", Err: err}
	}

	return item, nil
}

// DeleteOrder removes an order and its items. Used as the compensating
// action when item creation fails partway through.
func (r *PostgresOrderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return &apperrors.PersistenceError{Op: "delete order", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return &apperrors.PersistenceError{Op: "delete order items", Err: err}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return &apperrors.PersistenceError{Op: "delete order", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &apperrors.PersistenceError{Op: "delete order", Err: err}
	}

	r.logger.Warn("order rolled back", zap.Int64("order_id", orderID))
	return nil
}

// GetByID retrieves an order with its items.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, orderID int64) (*models.Order, error) {
	query := `
		SELECT id, user_id, is_approved, created_at
		FROM orders
		WHERE id = $1
	`

	var order models.Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&order.ID,
		&order.UserID,
		&order.IsApproved,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch order",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return nil, &apperrors.PersistenceError{Op: "get order", Err: err}
	}

	items, err := r.ItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return &order, nil
}

// ListByUser retrieves all orders for a user, newest first, items included.
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	query := `
		SELECT id, user_id, is_approved, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list orders", Err: err}
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.UserID, &order.IsApproved, &order.CreatedAt); err != nil {
			return nil, &apperrors.PersistenceError{Op: "scan order", Err: err}
		}
		orders = append(orders, &order)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperrors.PersistenceError{Op: "list orders", Err: err}
	}

	for _, order := range orders {
		items, err := r.ItemsByOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}

	return orders, nil
}

// GetItem retrieves a single order item by id.
func (r *PostgresOrderRepository) GetItem(ctx context.Context, itemID int64) (*models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_variation_id, product_id, shop_id,
		       quantity, price, status
		FROM order_items
		WHERE id = $1
	`

	var item models.OrderItem
	var status int
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ID,
		&item.OrderID,
		&item.ProductVariationID,
		&item.ProductID,
		&item.ShopID,
		&item.Quantity,
		&item.Price,
		&status,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "get order item", Err: err}
	}
	item.Status = models.ItemStatus(status)

	return &item, nil
}

// ItemsByOrder retrieves all items belonging to an order.
func (r *PostgresOrderRepository) ItemsByOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_variation_id, product_id, shop_id,
		       quantity, price, status
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list order items", Err: err}
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0)
	for rows.Next() {
		var item models.OrderItem
		var status int
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductVariationID,
			&item.ProductID,
			&item.ShopID,
			&item.Quantity,
			&item.Price,
			&status,
		); err != nil {
			return nil, &apperrors.PersistenceError{Op: "scan order item", Err: err}
		}
		item.Status = models.ItemStatus(status)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperrors.PersistenceError{Op: "list order items", Err: err}
	}

	return items, nil
}

// UpdateItemStatus sets a new status on an order item.
func (r *PostgresOrderRepository) UpdateItemStatus(ctx context.Context, itemID int64, status models.ItemStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE order_items SET status = $2 WHERE id = $1`,
		itemID, int(status),
	)
	if err != nil {
		r.logger.Error("failed to update item status",
			zap.Int64("order_item_id", itemID),
			zap.Int("status", int(status)),
			zap.Error(err),
		)
		return &apperrors.PersistenceError{Op: "update item status", Err: err}
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Info("order item status updated",
		zap.Int64("order_item_id", itemID),
		zap.String("status", status.String()),
	)

	return nil
}

// SetApproved updates the order-level approval flag. The flag is the AND
// over all item statuses and is recomputed by the caller after every
// item transition.
func (r *PostgresOrderRepository) SetApproved(ctx context.Context, orderID int64, approved bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_approved = $2 WHERE id = $1`,
		orderID, approved,
	)
	if err != nil {
		return &apperrors.PersistenceError{Op: "set order approved", Err: err}
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}
