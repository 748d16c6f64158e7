package wishlist

import (
	"context"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/events"
)

// Store is the wishlist persistence surface.
type Store interface {
	EnsureWishlist(ctx context.Context, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// Worker provisions wishlists from identity events: every active user gets
// one on signup, and a user who gets a shop approved loses theirs (shop
// owners buy through the shop account, not a wishlist).
type Worker struct {
	store  Store
	logger *zap.Logger
}

// NewWorker builds a wishlist worker.
func NewWorker(store Store, logger *zap.Logger) *Worker {
	return &Worker{
		store:  store,
		logger: logger,
	}
}

// HandleUserCreated is the consumer handler for user.created.
func (w *Worker) HandleUserCreated(ctx context.Context, env events.Envelope) error {
	data, err := events.DecodePayload[events.UserCreatedData](env)
	if err != nil {
		return err
	}

	if !data.IsActive {
		w.logger.Debug("skipping inactive user", zap.String("user_uuid", data.UserUUID))
		return nil
	}

	return w.store.EnsureWishlist(ctx, data.UserUUID)
}

// HandleShopApproved is the consumer handler for shop.approved.
func (w *Worker) HandleShopApproved(ctx context.Context, env events.Envelope) error {
	data, err := events.DecodePayload[events.ShopApprovedData](env)
	if err != nil {
		return err
	}

	w.logger.Info("dropping wishlist for new shop owner",
		zap.String("user_uuid", data.UserUUID),
		zap.String("shop_id", data.ShopID),
	)

	return w.store.DeleteByUser(ctx, data.UserUUID)
}
