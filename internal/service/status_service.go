package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// ItemStatusService runs the shop-owner status workflow: transition an item,
// recompute the parent order's approval flag, and push fully approved orders
// to analytics.
type ItemStatusService struct {
	repo      OrderRepository
	shops     clients.ShopClient
	analytics clients.AnalyticsClient
	publisher events.Publisher
	cache     OrderCache
	logger    *zap.Logger
}

// NewItemStatusService wires the status workflow. cache may be nil.
func NewItemStatusService(
	repo OrderRepository,
	shops clients.ShopClient,
	analytics clients.AnalyticsClient,
	publisher events.Publisher,
	cache OrderCache,
	logger *zap.Logger,
) *ItemStatusService {
	return &ItemStatusService{
		repo:      repo,
		shops:     shops,
		analytics: analytics,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// UpdateItemStatus moves an order item to a new status on behalf of a shop
// owner. The caller must own the shop the item was sold from. Every item
// carries its shop_id from creation, so ownership is a pure set membership
// check.
func (s *ItemStatusService) UpdateItemStatus(ctx context.Context, userID string, itemID int64, status models.ItemStatus) (*models.OrderItem, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown status value")
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	owned, err := s.shops.GetUserShopIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !contains(owned, item.ShopID) {
		s.logger.Warn("status update refused, caller does not own shop",
			zap.Int64("order_item_id", itemID),
			zap.String("user_id", userID),
			zap.String("shop_id", item.ShopID),
		)
		return nil, apperrors.ErrForbidden
	}

	if err := s.repo.UpdateItemStatus(ctx, itemID, status); err != nil {
		return nil, err
	}
	item.Status = status
	metrics.OrderItemStatusUpdates.WithLabelValues(status.String()).Inc()

	approved, err := s.recomputeApproval(ctx, item.OrderID)
	if err != nil {
		// The item transition itself is committed; approval will be
		// recomputed on the next transition.
		s.logger.Error("failed to recompute order approval",
			zap.Int64("order_id", item.OrderID),
			zap.Error(err),
		)
	}

	s.publishStatusUpdated(ctx, item)

	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, item.OrderID); err != nil {
			s.logger.Warn("failed to invalidate order cache", zap.Error(err))
		}
	}

	if approved {
		s.pushToAnalytics(ctx, item.OrderID)
	}

	return item, nil
}

// recomputeApproval sets Order.is_approved to the AND over all item
// statuses. Returns true only when the flag transitioned to approved now.
func (s *ItemStatusService) recomputeApproval(ctx context.Context, orderID int64) (bool, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}

	approved := models.AllItemsApproved(order.Items)
	if approved == order.IsApproved {
		return false, nil
	}

	if err := s.repo.SetApproved(ctx, orderID, approved); err != nil {
		return false, err
	}

	s.logger.Info("order approval flag updated",
		zap.Int64("order_id", orderID),
		zap.Bool("is_approved", approved),
	)

	return approved, nil
}

func (s *ItemStatusService) publishStatusUpdated(ctx context.Context, item *models.OrderItem) {
	data := events.OrderItemStatusUpdatedData{
		OrderItemID: item.ID,
		OrderID:     item.OrderID,
		ShopID:      item.ShopID,
		Status:      int(item.Status),
	}
	if err := s.publisher.PublishOrderItemStatusUpdated(ctx, data); err != nil {
		s.logger.Warn("failed to publish order.item.status.updated",
			zap.Int64("order_item_id", item.ID),
			zap.Error(err),
		)
	}
}

// pushToAnalytics sends the now fully approved order to the analytics
// service. Failure is logged only; the projection can be replayed.
func (s *ItemStatusService) pushToAnalytics(ctx context.Context, orderID int64) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error("failed to load order for analytics push",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	payload := models.CompletedOrder{
		OrderID: order.ID,
		UserID:  order.UserID,
	}
	for _, item := range order.Items {
		if item.Status != models.ItemStatusApproved {
			continue
		}
		payload.Items = append(payload.Items, models.CompletedOrderItem{
			OrderItemID:        item.ID,
			ShopID:             item.ShopID,
			ProductID:          item.ProductID,
			ProductVariationID: item.ProductVariationID,
			Quantity:           item.Quantity,
			Price:              item.Price,
		})
	}

	if err := s.analytics.SendCompletedOrder(ctx, payload); err != nil {
		s.logger.Error("failed to push completed order to analytics",
			zap.Int64("order_id", orderID),
			zap.Error(err),
		)
	}
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
