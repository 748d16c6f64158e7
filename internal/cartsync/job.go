package cartsync

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// CartStore is the direct write surface for the sweep.
type CartStore interface {
	ListItems(ctx context.Context) ([]models.CartItem, error)
	UpdateQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
}

// Report aggregates one full sweep.
type Report struct {
	Total     int
	Updated   int
	Deleted   int
	Unchanged int
	Errors    int
}

// Job re-validates every cart item against live inventory on a fixed
// interval. It is the safety net for dropped order.created events, partial
// decrement failures and out-of-band stock edits: anything the event path
// misses, the next sweep corrects. Re-running over a clean state is a no-op.
type Job struct {
	store    CartStore
	products clients.ProductClient
	interval time.Duration
	logger   *zap.Logger
}

// NewJob builds the sync job.
func NewJob(store CartStore, products clients.ProductClient, interval time.Duration, logger *zap.Logger) *Job {
	return &Job{
		store:    store,
		products: products,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on the configured interval until ctx is cancelled. One run
// happens immediately at startup.
func (j *Job) Run(ctx context.Context) {
	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			j.logger.Info("cart sync stopping")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Job) sweep(ctx context.Context) {
	report, err := j.Sweep(ctx)
	if err != nil {
		metrics.CartSyncRuns.WithLabelValues("failed").Inc()
		j.logger.Error("cart sweep aborted", zap.Error(err))
		return
	}

	metrics.CartSyncRuns.WithLabelValues("ok").Inc()
	j.logger.Info("cart sweep finished",
		zap.Int("total", report.Total),
		zap.Int("updated", report.Updated),
		zap.Int("deleted", report.Deleted),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("errors", report.Errors),
	)
}

// Sweep runs one full pass over all cart items. Per-item failures are
// isolated: one bad row counts as an error and the pass continues.
func (j *Job) Sweep(ctx context.Context) (Report, error) {
	items, err := j.store.ListItems(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: len(items)}
	for _, item := range items {
		switch outcome, err := j.syncItem(ctx, item); {
		case err != nil:
			report.Errors++
			j.logger.Error("failed to sync cart item",
				zap.Int64("cart_item_id", item.ID),
				zap.Error(err),
			)
		case outcome == outcomeDeleted:
			report.Deleted++
			metrics.CartSyncItemsTouched.WithLabelValues("deleted").Inc()
		case outcome == outcomeUpdated:
			report.Updated++
			metrics.CartSyncItemsTouched.WithLabelValues("updated").Inc()
		default:
			report.Unchanged++
		}
	}

	return report, nil
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeUpdated
	outcomeDeleted
)

func (j *Job) syncItem(ctx context.Context, item models.CartItem) (outcome, error) {
	variation, err := j.products.GetVariation(ctx, item.ProductVariationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return outcomeDeleted, j.store.DeleteItem(ctx, item.ID)
	}
	if err != nil {
		return outcomeUnchanged, err
	}

	if !variation.Product.IsActive || variation.Amount == 0 {
		return outcomeDeleted, j.store.DeleteItem(ctx, item.ID)
	}

	if variation.Amount < item.Quantity {
		return outcomeUpdated, j.store.UpdateQuantity(ctx, item.ID, variation.Amount)
	}

	return outcomeUnchanged, nil
}
