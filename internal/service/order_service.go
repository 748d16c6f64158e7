package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/events"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// OrderRepository is the persistence surface the saga needs.
type OrderRepository interface {
	CreateOrder(ctx context.Context, userID string) (*models.Order, error)
	CreateOrderItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error)
	DeleteOrder(ctx context.Context, orderID int64) error
	GetByID(ctx context.Context, orderID int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Order, error)
	GetItem(ctx context.Context, itemID int64) (*models.OrderItem, error)
	ItemsByOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error)
	UpdateItemStatus(ctx context.Context, itemID int64, status models.ItemStatus) error
	SetApproved(ctx context.Context, orderID int64, approved bool) error
}

// OrderCache is the optional read-side cache. Any method may fail without
// affecting correctness.
type OrderCache interface {
	Get(ctx context.Context, orderID int64) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	InvalidateOrder(ctx context.Context, orderID int64) error
	InvalidateByUserID(ctx context.Context, userID string) error
}

// OrderService runs the order-from-cart saga and the order read side.
type OrderService struct {
	repo      OrderRepository
	carts     clients.CartClient
	validator *CartValidator
	publisher events.Publisher
	cache     OrderCache
	logger    *zap.Logger
}

// NewOrderService wires the saga's collaborators. cache may be nil.
func NewOrderService(
	repo OrderRepository,
	carts clients.CartClient,
	validator *CartValidator,
	publisher events.Publisher,
	cache OrderCache,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		repo:      repo,
		carts:     carts,
		validator: validator,
		publisher: publisher,
		cache:     cache,
		logger:    logger,
	}
}

// CreateFromCart converts the user's current cart into an order.
//
// The flow is all-or-nothing: if any line fails validation no order is
// written. Instead every corrective action is applied to the cart and a
// *models.StockConflict error is returned carrying the full diff, so the
// caller can retry against the repaired cart. Only a fully valid cart
// produces an order; a failure while inserting items deletes the
// half-created order before surfacing the error.
func (s *OrderService) CreateFromCart(ctx context.Context, userID string) (*models.Order, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCartNotFound) {
			metrics.OrderCreationFailed.WithLabelValues("cart_not_found").Inc()
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		metrics.OrderCreationFailed.WithLabelValues("empty_cart").Inc()
		return nil, apperrors.ErrEmptyCart
	}

	validated, corrections, err := s.validator.ValidateCart(ctx, cart)
	if err != nil {
		metrics.OrderCreationFailed.WithLabelValues("dependency").Inc()
		return nil, err
	}

	if len(corrections) > 0 {
		return nil, s.repairCart(ctx, cart, corrections)
	}

	order, err := s.persistOrder(ctx, userID, validated)
	if err != nil {
		metrics.OrderCreationFailed.WithLabelValues("persistence").Inc()
		return nil, err
	}

	s.publishCreated(ctx, order, cart.ID)

	// The cart served its purpose; emptying it is best effort.
	if err := s.carts.ClearCart(ctx, cart.ID); err != nil {
		s.logger.Warn("failed to clear cart after order",
			zap.Int64("cart_id", cart.ID),
			zap.Error(err),
		)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateByUserID(ctx, userID); err != nil {
			s.logger.Warn("failed to invalidate user order cache", zap.Error(err))
		}
	}

	metrics.OrdersCreated.Inc()
	s.logger.Info("order created from cart",
		zap.Int64("order_id", order.ID),
		zap.Int64("cart_id", cart.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(order.Items)),
	)

	return order, nil
}

// repairCart applies every correction to the cart store and builds the
// conflict result. A correction that fails to apply is still reported, with
// Applied left false, and does not stop the rest.
func (s *OrderService) repairCart(ctx context.Context, cart *models.Cart, corrections []models.CartCorrection) error {
	fixed := 0
	for i := range corrections {
		c := &corrections[i]
		var err error
		switch c.Action {
		case models.ActionRemove:
			err = s.carts.DeleteItem(ctx, c.CartItemID)
		case models.ActionUpdate:
			err = s.carts.UpdateItemQuantity(ctx, c.CartItemID, c.NewQuantity)
		}
		if err != nil {
			s.logger.Error("failed to apply cart correction",
				zap.Int64("cart_item_id", c.CartItemID),
				zap.String("action", string(c.Action)),
				zap.Error(err),
			)
			continue
		}
		c.Applied = true
		fixed++
		metrics.CartCorrections.WithLabelValues(string(c.Reason)).Inc()
	}

	metrics.OrderCreationFailed.WithLabelValues("stock_conflict").Inc()
	s.logger.Warn("cart failed validation, corrections applied",
		zap.Int64("cart_id", cart.ID),
		zap.Int("issues_found", len(corrections)),
		zap.Int("items_fixed", fixed),
	)

	return &models.StockConflict{
		CartID:      cart.ID,
		IssuesFound: len(corrections),
		ItemsFixed:  fixed,
		Details:     corrections,
	}
}

func (s *OrderService) persistOrder(ctx context.Context, userID string, lines []ValidatedLine) (*models.Order, error) {
	order, err := s.repo.CreateOrder(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, line := range lines {
		item := &models.OrderItem{
			OrderID:            order.ID,
			ProductVariationID: line.ProductVariationID,
			ProductID:          line.ProductID,
			ShopID:             line.ShopID,
			Quantity:           line.Quantity,
			Price:              0, // resolved by the pricing path, not here
			Status:             models.ItemStatusProcessing,
		}

		created, err := s.repo.CreateOrderItem(ctx, item)
		if err != nil {
			if delErr := s.repo.DeleteOrder(ctx, order.ID); delErr != nil {
				s.logger.Error("compensating order delete failed",
					zap.Int64("order_id", order.ID),
					zap.Error(delErr),
				)
			}
			return nil, err
		}
		order.Items = append(order.Items, *created)

		if pubErr := s.publisher.PublishOrderItemCreated(ctx, order, created); pubErr != nil {
			s.logger.Warn("failed to publish order.item.created",
				zap.Int64("order_item_id", created.ID),
				zap.Error(pubErr),
			)
		}
	}

	return order, nil
}

// publishCreated fires the order.created event. A publish failure never
// rolls back the order; the sync job reconciles lost events.
func (s *OrderService) publishCreated(ctx context.Context, order *models.Order, cartID int64) {
	items := make([]events.OrderLine, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, events.OrderLine{
			ProductVariationID: item.ProductVariationID,
			Quantity:           item.Quantity,
		})
	}

	data := events.OrderCreatedData{
		OrderID:  order.ID,
		UserUUID: order.UserID,
		CartID:   cartID,
		Items:    items,
	}

	if err := s.publisher.PublishOrderCreated(ctx, data); err != nil {
		s.logger.Error("failed to publish order.created, stock decrement will lag",
			zap.Int64("order_id", order.ID),
			zap.Error(err),
		)
	}
}

// GetOrder returns a single order, serving from cache when possible.
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, orderID); err == nil && cached != nil {
			return cached, nil
		}
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, order); err != nil {
			s.logger.Warn("failed to cache order", zap.Int64("order_id", order.ID), zap.Error(err))
		}
	}

	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}
