package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// Publisher is the outbound half of the event bus client. Messages are
// persistent (acked by all replicas) and keyed by aggregate id so one order's
// events stay ordered within a partition.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, data OrderCreatedData) error
	PublishOrderItemCreated(ctx context.Context, order *models.Order, item *models.OrderItem) error
	PublishOrderItemStatusUpdated(ctx context.Context, data OrderItemStatusUpdatedData) error
	Close() error
}

// KafkaPublisher publishes envelopes to per-event-type topics.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher builds a publisher over a single writer; the topic is set
// per message. The writer is constructed here and owned by the caller's
// lifecycle (constructed once in main, injected everywhere).
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireAll,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, data OrderCreatedData) error {
	env := NewEnvelope(TopicOrderCreated, data)
	return p.publish(ctx, TopicOrderCreated, strconv.FormatInt(data.OrderID, 10), env)
}

func (p *KafkaPublisher) PublishOrderItemCreated(ctx context.Context, order *models.Order, item *models.OrderItem) error {
	data := OrderItemCreatedData{
		OrderItemID:      item.ID,
		OrderID:          order.ID,
		ShopID:           item.ShopID,
		ProductID:        item.ProductID,
		ProductVariation: item.ProductVariationID,
		Quantity:         item.Quantity,
		Price:            item.Price,
		Status:           int(item.Status),
		UserID:           order.UserID,
	}
	env := NewEnvelope(TopicOrderItemCreated, data)
	return p.publish(ctx, TopicOrderItemCreated, strconv.FormatInt(order.ID, 10), env)
}

func (p *KafkaPublisher) PublishOrderItemStatusUpdated(ctx context.Context, data OrderItemStatusUpdatedData) error {
	env := NewEnvelope(TopicOrderItemStatusUpdated, data)
	return p.publish(ctx, TopicOrderItemStatusUpdated, strconv.FormatInt(data.OrderID, 10), env)
}

func (p *KafkaPublisher) publish(ctx context.Context, topic, key string, env Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(env.EventType)},
			{Key: "event_id", Value: []byte(env.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("event_id", env.EventID),
			zap.String("event_type", env.EventType),
			zap.Error(err),
		)
		return err
	}

	p.logger.Info("event published",
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.String("key", key),
	)

	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("closing event publisher")
	return p.writer.Close()
}
