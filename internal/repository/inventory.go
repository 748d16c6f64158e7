package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
)

// StockLine is one variation/quantity pair from an order.
type StockLine struct {
	ProductVariationID string
	Quantity           int
}

// DecrementResult records the outcome of one line of a decrement batch.
type DecrementResult struct {
	ProductVariationID string
	Applied            bool
	Reason             string // "not_found" or "insufficient" when not applied
}

// PostgresInventoryRepository owns the variation stock table and the
// processed-events ledger used to deduplicate consumer deliveries.
type PostgresInventoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresInventoryRepository creates a new PostgreSQL inventory repository.
func NewPostgresInventoryRepository(db *sql.DB, logger *zap.Logger) *PostgresInventoryRepository {
	return &PostgresInventoryRepository{
		db:     db,
		logger: logger,
	}
}

// DecrementForOrder applies the stock decrement for one order.created event.
//
// The whole batch runs in a single transaction. Each variation row is taken
// with FOR UPDATE before the new amount is computed, and the amount never
// goes below zero: a line whose remaining stock is short is skipped with a
// warning while the rest of the batch still applies. The event id is
// recorded in processed_events inside the same transaction, so a redelivery
// either sees the insert and becomes a no-op, or the first attempt rolled
// back and the retry starts clean.
func (r *PostgresInventoryRepository) DecrementForOrder(ctx context.Context, eventID string, lines []StockLine) ([]DecrementResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "decrement stock", Err: err}
	}
	defer tx.Rollback()

	inserted, err := r.markProcessed(ctx, tx, eventID)
	if err != nil {
		return nil, err
	}
	if !inserted {
		r.logger.Info("event already processed, skipping decrement",
			zap.String("event_id", eventID),
		)
		return nil, nil
	}

	results := make([]DecrementResult, 0, len(lines))
	for _, line := range lines {
		result, err := r.decrementLine(ctx, tx, line)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := tx.Commit(); err != nil {
		return nil, &apperrors.PersistenceError{Op: "decrement stock", Err: err}
	}

	return results, nil
}

func (r *PostgresInventoryRepository) decrementLine(ctx context.Context, tx *sql.Tx, line StockLine) (DecrementResult, error) {
	result := DecrementResult{ProductVariationID: line.ProductVariationID}

	var amount int
	err := tx.QueryRowContext(ctx,
		`SELECT amount FROM product_variations WHERE id = $1 FOR UPDATE`,
		line.ProductVariationID,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		r.logger.Warn("variation missing during stock decrement",
			zap.String("product_variation_id", line.ProductVariationID),
		)
		result.Reason = "not_found"
		return result, nil
	}
	if err != nil {
		return result, &apperrors.PersistenceError{Op: "lock variation", Err: err}
	}

	if amount < line.Quantity {
		r.logger.Warn("insufficient stock during decrement, skipping line",
			zap.String("product_variation_id", line.ProductVariationID),
			zap.Int("amount", amount),
			zap.Int("requested", line.Quantity),
		)
		result.Reason = "insufficient"
		return result, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE product_variations SET amount = amount - $2 WHERE id = $1`,
		line.ProductVariationID, line.Quantity,
	); err != nil {
		return result, &apperrors.PersistenceError{Op: "decrement variation", Err: err}
	}

	result.Applied = true
	return result, nil
}

// markProcessed inserts the event id into the ledger. Returns false when the
// id was already there, which means a duplicate delivery.
func (r *PostgresInventoryRepository) markProcessed(ctx context.Context, tx *sql.Tx, eventID string) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT INTO processed_events (event_id, processed_at)
		VALUES ($1, $2)
		ON CONFLICT (event_id) DO NOTHING
	`, eventID, time.Now().UTC())
	if err != nil {
		return false, &apperrors.PersistenceError{Op: "mark event processed", Err: err}
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// LowStockCount counts variations whose stock is at or below their own
// reorder limit. Feeds the low-stock gauge.
func (r *PostgresInventoryRepository) LowStockCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_variations WHERE amount <= amount_limit`,
	).Scan(&count)
	if err != nil {
		return 0, &apperrors.PersistenceError{Op: "count low stock", Err: err}
	}
	return count, nil
}
