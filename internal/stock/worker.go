package stock

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
)

// InventoryStore is the persistence surface the worker needs.
type InventoryStore interface {
	DecrementForOrder(ctx context.Context, eventID string, lines []repository.StockLine) ([]repository.DecrementResult, error)
	LowStockCount(ctx context.Context) (int, error)
}

// EventDedup is the optional fast-path duplicate check in front of the
// database ledger.
type EventDedup interface {
	MarkEventSeen(ctx context.Context, eventID string) (bool, error)
}

// Worker applies stock decrements for order.created events.
//
// Each line is handled independently: a missing variation or a short stock
// balance logs and skips that line while the rest still apply. The order
// already exists, so the worker takes maximum partial progress over
// all-or-nothing. Duplicate deliveries are absorbed twice over, first by the
// Redis fast path and then by the processed-events ledger inside the
// decrement transaction.
type Worker struct {
	store  InventoryStore
	dedup  EventDedup
	logger *zap.Logger
}

// NewWorker builds a stock worker. dedup may be nil, the database ledger
// alone is sufficient.
func NewWorker(store InventoryStore, dedup EventDedup, logger *zap.Logger) *Worker {
	return &Worker{
		store:  store,
		dedup:  dedup,
		logger: logger,
	}
}

// HandleOrderCreated is the consumer handler for order.created.
func (w *Worker) HandleOrderCreated(ctx context.Context, env events.Envelope) error {
	data, err := events.DecodePayload[events.OrderCreatedData](env)
	if err != nil {
		return err
	}

	if w.dedup != nil {
		first, err := w.dedup.MarkEventSeen(ctx, env.EventID)
		if err != nil {
			// Redis being down only costs the fast path.
			w.logger.Warn("dedup fast path unavailable", zap.Error(err))
		} else if !first {
			w.logger.Info("duplicate delivery short-circuited",
				zap.String("event_id", env.EventID),
				zap.Int64("order_id", data.OrderID),
			)
			return nil
		}
	}

	lines := make([]repository.StockLine, 0, len(data.Items))
	for _, item := range data.Items {
		lines = append(lines, repository.StockLine{
			ProductVariationID: item.ProductVariationID,
			Quantity:           item.Quantity,
		})
	}

	results, err := w.store.DecrementForOrder(ctx, env.EventID, lines)
	if err != nil {
		return err
	}

	for _, res := range results {
		if res.Applied {
			metrics.StockDecrements.WithLabelValues("applied").Inc()
			continue
		}
		metrics.StockDecrements.WithLabelValues(res.Reason).Inc()
		w.logger.Warn("stock decrement skipped",
			zap.Int64("order_id", data.OrderID),
			zap.String("product_variation_id", res.ProductVariationID),
			zap.String("reason", res.Reason),
		)
	}

	w.logger.Info("stock decremented for order",
		zap.Int64("order_id", data.OrderID),
		zap.Int("lines", len(lines)),
	)

	return nil
}

// RunLowStockSweep refreshes the low-stock gauge on the given interval
// until ctx is cancelled.
func (w *Worker) RunLowStockSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := w.store.LowStockCount(ctx)
			if err != nil {
				w.logger.Error("low stock sweep failed", zap.Error(err))
				continue
			}
			metrics.LowStockVariations.Set(float64(count))
			if count > 0 {
				w.logger.Warn("variations at or below reorder limit",
					zap.Int("count", count),
				)
			}
		}
	}
}
