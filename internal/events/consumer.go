package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/metrics"
)

// Handler processes one decoded envelope. Returning an error drops the
// message (it is committed and counted), never blocks the partition.
type Handler func(ctx context.Context, env Envelope) error

// Consumer reads from a set of topics and dispatches each envelope through a
// routing table keyed by event type. Delivery is at-least-once: the offset is
// committed only after the handler returns, so handlers must be idempotent.
type Consumer struct {
	reader     *kafka.Reader
	deadLetter *kafka.Writer
	routes     map[string]Handler
	logger     *zap.Logger
}

// NewConsumer builds a consumer for the given topics. QueueCapacity is kept
// at 1 so at most one fetched message sits in memory ahead of the handler.
func NewConsumer(cfg config.KafkaConfig, groupID string, topics []string, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        groupID,
		GroupTopics:    topics,
		QueueCapacity:  1,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		MaxWait:        time.Second,
		CommitInterval: 0, // synchronous commits
	})

	var deadLetter *kafka.Writer
	if cfg.DeadLetterTopic != "" {
		deadLetter = &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.DeadLetterTopic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireAll,
		}
	}

	return &Consumer{
		reader:     reader,
		deadLetter: deadLetter,
		routes:     make(map[string]Handler),
		logger:     logger,
	}
}

// Route registers a handler for an event type. Must be called before Run.
func (c *Consumer) Route(eventType string, h Handler) {
	c.routes[eventType] = h
}

// Run blocks, fetching and dispatching messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("consumer started", zap.Strings("routes", c.routeNames()))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping")
				return nil
			}
			c.logger.Error("failed to fetch message", zap.Error(err))
			continue
		}

		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit offset",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg kafka.Message) {
	var env Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Error("malformed event payload",
			zap.String("topic", msg.Topic),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		c.toDeadLetter(ctx, msg, "malformed")
		return
	}

	handler, ok := c.routes[env.EventType]
	if !ok {
		c.logger.Warn("no route for event type",
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID),
		)
		c.toDeadLetter(ctx, msg, "unroutable")
		return
	}

	start := time.Now()
	if err := handler(ctx, env); err != nil {
		metrics.EventsDropped.WithLabelValues(env.EventType).Inc()
		c.logger.Error("event handler failed, dropping message",
			zap.String("event_type", env.EventType),
			zap.String("event_id", env.EventID),
			zap.Error(err),
		)
		return
	}

	metrics.EventsConsumed.WithLabelValues(env.EventType).Inc()
	c.logger.Info("event processed",
		zap.String("event_type", env.EventType),
		zap.String("event_id", env.EventID),
		zap.Duration("took", time.Since(start)),
	)
}

func (c *Consumer) toDeadLetter(ctx context.Context, msg kafka.Message, reason string) {
	metrics.EventsDeadLettered.WithLabelValues(msg.Topic, reason).Inc()
	if c.deadLetter == nil {
		return
	}

	dlMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "dead_letter_reason", Value: []byte(reason)},
			kafka.Header{Key: "source_topic", Value: []byte(msg.Topic)},
		),
	}
	if err := c.deadLetter.WriteMessages(ctx, dlMsg); err != nil {
		c.logger.Error("failed to write to dead letter topic",
			zap.String("source_topic", msg.Topic),
			zap.Error(err),
		)
	}
}

func (c *Consumer) routeNames() []string {
	names := make([]string, 0, len(c.routes))
	for name := range c.routes {
		names = append(names, name)
	}
	return names
}

// Close tears down the reader and the dead letter writer.
func (c *Consumer) Close() error {
	var errs []error
	if err := c.reader.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.deadLetter != nil {
		if err := c.deadLetter.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
