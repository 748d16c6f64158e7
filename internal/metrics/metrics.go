package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors shared across the binaries. All of them live on the default
// registry so each main only needs to mount promhttp.Handler().
var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created from carts.",
	})

	OrderCreationFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_creation_failed_total",
		Help: "Order creation attempts that failed, by reason.",
	}, []string{"reason"})

	CartCorrections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_corrections_total",
		Help: "Cart items auto-repaired during validation, by reason.",
	}, []string{"reason"})

	OrderItemStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_item_status_updates_total",
		Help: "Order item status transitions, by target status.",
	}, []string{"status"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_consumed_total",
		Help: "Events successfully processed, by event type.",
	}, []string{"event_type"})

	EventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_dropped_total",
		Help: "Events dropped after a handler error, by event type.",
	}, []string{"event_type"})

	EventsDeadLettered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_dead_lettered_total",
		Help: "Events routed to the dead letter topic, by source topic and reason.",
	}, []string{"topic", "reason"})

	StockDecrements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_decrements_total",
		Help: "Stock decrement outcomes per order line, by result.",
	}, []string{"result"})

	LowStockVariations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "low_stock_variations",
		Help: "Variations whose stock is at or below the configured threshold.",
	})

	CartSyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_runs_total",
		Help: "Cart sync sweep completions, by outcome.",
	}, []string{"outcome"})

	CartSyncItemsTouched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_items_touched_total",
		Help: "Cart items modified by the sync job, by action.",
	}, []string{"action"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method, route and status code.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
