package repository

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// PostgresCartRepository gives the sync job direct access to cart items.
// The order saga itself goes through the cart service client; only the
// maintenance sweep touches the rows.
type PostgresCartRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresCartRepository creates a new PostgreSQL cart repository.
func NewPostgresCartRepository(db *sql.DB, logger *zap.Logger) *PostgresCartRepository {
	return &PostgresCartRepository{
		db:     db,
		logger: logger,
	}
}

// ListItems returns every cart item across all carts, oldest first.
func (r *PostgresCartRepository) ListItems(ctx context.Context) ([]models.CartItem, error) {
	query := `
		SELECT id, shop_cart_id, product_variation_id, quantity
		FROM cart_items
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "list cart items", Err: err}
	}
	defer rows.Close()

	items := make([]models.CartItem, 0)
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.ShopCartID, &item.ProductVariationID, &item.Quantity); err != nil {
			return nil, &apperrors.PersistenceError{Op: "scan cart item", Err: err}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, &apperrors.PersistenceError{Op: "list cart items", Err: err}
	}

	return items, nil
}

// UpdateQuantity clamps a cart item to a new quantity.
func (r *PostgresCartRepository) UpdateQuantity(ctx context.Context, itemID int64, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $2 WHERE id = $1`,
		itemID, quantity,
	)
	if err != nil {
		return &apperrors.PersistenceError{Op: "update cart item", Err: err}
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

// DeleteItem removes a cart item.
func (r *PostgresCartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1`,
		itemID,
	)
	if err != nil {
		return &apperrors.PersistenceError{Op: "delete cart item", Err: err}
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperrors.ErrNotFound
	}

	r.logger.Debug("cart item removed", zap.Int64("cart_item_id", itemID))
	return nil
}
