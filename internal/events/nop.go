package events

import (
	"context"

	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// NopPublisher discards every event. Used when order events are feature
// flagged off, e.g. in local development without a broker.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, OrderCreatedData) error {
	return nil
}

func (NopPublisher) PublishOrderItemCreated(context.Context, *models.Order, *models.OrderItem) error {
	return nil
}

func (NopPublisher) PublishOrderItemStatusUpdated(context.Context, OrderItemStatusUpdatedData) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
