package analytics

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
	"github.com/mercato-shop/mercato-orders-platform/internal/repository"
)

// Store is the projection write surface.
type Store interface {
	UpsertOrder(ctx context.Context, row repository.AnalyticsOrderRow) error
	UpsertItem(ctx context.Context, row repository.AnalyticsItemRow) error
}

// IngestResult summarizes one completed-order ingestion.
type IngestResult struct {
	OrderID       int64
	ItemsIngested int
	ItemsSkipped  int
}

// Service ingests completed orders into the denormalized projection.
//
// Denormalization happens here, at ingestion time: each line is resolved
// against the product catalog as it is now, so later product edits do not
// rewrite history unless the order is re-ingested. Writes are upserts, so
// replaying a push is harmless.
type Service struct {
	store    Store
	products clients.ProductClient
	logger   *zap.Logger
}

// NewService builds the ingestion service.
func NewService(store Store, products clients.ProductClient, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// IngestCompletedOrder projects one approved order. A line whose variation
// no longer resolves is logged and skipped; the rest of the order still
// lands. Prices arrive in minor units and are stored in major units.
func (s *Service) IngestCompletedOrder(ctx context.Context, order models.CompletedOrder) (IngestResult, error) {
	if err := s.store.UpsertOrder(ctx, repository.AnalyticsOrderRow{
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		ApprovedAt: time.Now().UTC(),
	}); err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{OrderID: order.OrderID}
	for _, item := range order.Items {
		variation, err := s.products.GetVariation(ctx, item.ProductVariationID)
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("skipping line, variation no longer resolves",
				zap.Int64("order_id", order.OrderID),
				zap.String("product_variation_id", item.ProductVariationID),
			)
			result.ItemsSkipped++
			continue
		}
		if err != nil {
			return result, err
		}

		row := repository.AnalyticsItemRow{
			OrderItemID:  item.OrderItemID,
			OrderID:      order.OrderID,
			ShopID:       variation.Product.ShopID,
			ProductID:    variation.Product.ID,
			ProductTitle: variation.Product.Title,
			Quantity:     item.Quantity,
			Price:        float64(item.Price) / 100,
		}
		if err := s.store.UpsertItem(ctx, row); err != nil {
			return result, err
		}
		result.ItemsIngested++
	}

	s.logger.Info("completed order ingested",
		zap.Int64("order_id", order.OrderID),
		zap.Int("ingested", result.ItemsIngested),
		zap.Int("skipped", result.ItemsSkipped),
	)

	return result, nil
}
