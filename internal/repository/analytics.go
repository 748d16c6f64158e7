package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
)

// AnalyticsOrderRow is the denormalized order projection.
type AnalyticsOrderRow struct {
	OrderID    int64
	UserID     string
	ApprovedAt time.Time
}

// AnalyticsItemRow is one denormalized line of an approved order. Price is
// in major units (already divided down from cents at ingestion).
type AnalyticsItemRow struct {
	OrderItemID  int64
	OrderID      int64
	ShopID       string
	ProductID    string
	ProductTitle string
	Quantity     int
	Price        float64
}

// PostgresAnalyticsRepository stores the read-side projection of approved
// orders. Writes are upserts keyed by the source ids, so re-ingesting the
// same order is harmless.
type PostgresAnalyticsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresAnalyticsRepository creates a new PostgreSQL analytics repository.
func NewPostgresAnalyticsRepository(db *sql.DB, logger *zap.Logger) *PostgresAnalyticsRepository {
	return &PostgresAnalyticsRepository{
		db:     db,
		logger: logger,
	}
}

// UpsertOrder writes or refreshes the order-level projection row.
func (r *PostgresAnalyticsRepository) UpsertOrder(ctx context.Context, row AnalyticsOrderRow) error {
	query := `
		INSERT INTO completed_orders (order_id, user_id, approved_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id)
		DO UPDATE SET user_id = EXCLUDED.user_id, approved_at = EXCLUDED.approved_at
	`

	if _, err := r.db.ExecContext(ctx, query, row.OrderID, row.UserID, row.ApprovedAt); err != nil {
		r.logger.Error("failed to upsert completed order",
			zap.Int64("order_id", row.OrderID),
			zap.Error(err),
		)
		return &apperrors.PersistenceError{Op: "upsert completed order", Err: err}
	}

	return nil
}

// UpsertItem writes or refreshes one projected order line.
func (r *PostgresAnalyticsRepository) UpsertItem(ctx context.Context, row AnalyticsItemRow) error {
	query := `
		INSERT INTO completed_order_items (
			order_item_id, order_id, shop_id, product_id,
			product_title, quantity, price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (order_item_id)
		DO UPDATE SET
			shop_id = EXCLUDED.shop_id,
			product_id = EXCLUDED.product_id,
			product_title = EXCLUDED.product_title,
			quantity = EXCLUDED.quantity,
			price = EXCLUDED.price
	`

	if _, err := r.db.ExecContext(ctx, query,
		row.OrderItemID,
		row.OrderID,
		row.ShopID,
		row.ProductID,
		row.ProductTitle,
		row.Quantity,
		row.Price,
	); err != nil {
		return &apperrors.PersistenceError{Op: "upsert completed order item", Err: err}
	}

	return nil
}
