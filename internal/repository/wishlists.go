package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
)

// PostgresWishlistRepository backs the wishlist provisioning worker.
type PostgresWishlistRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresWishlistRepository creates a new PostgreSQL wishlist repository.
func NewPostgresWishlistRepository(db *sql.DB, logger *zap.Logger) *PostgresWishlistRepository {
	return &PostgresWishlistRepository{
		db:     db,
		logger: logger,
	}
}

// EnsureWishlist provisions a wishlist for a user. Creating twice is a
// no-op, so redelivered user.created events are safe.
func (r *PostgresWishlistRepository) EnsureWishlist(ctx context.Context, userID string) error {
	query := `
		INSERT INTO wishlists (user_id, created_at)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC())
	if err != nil {
		r.logger.Error("failed to provision wishlist",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return &apperrors.PersistenceError{Op: "ensure wishlist", Err: err}
	}

	if affected, _ := result.RowsAffected(); affected > 0 {
		r.logger.Info("wishlist provisioned", zap.String("user_id", userID))
	}

	return nil
}

// DeleteByUser removes a user's wishlist, e.g. when they become a shop
// owner. Deleting a missing wishlist is not an error.
func (r *PostgresWishlistRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlists WHERE user_id = $1`,
		userID,
	); err != nil {
		return &apperrors.PersistenceError{Op: "delete wishlist", Err: err}
	}

	return nil
}
