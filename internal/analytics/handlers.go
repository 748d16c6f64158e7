package analytics

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/handlers"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// Handlers is the analytics service's HTTP surface.
type Handlers struct {
	service *Service
	logger  *zap.Logger
}

// NewHandlers creates the analytics handlers.
func NewHandlers(service *Service, logger *zap.Logger) *Handlers {
	return &Handlers{
		service: service,
		logger:  logger,
	}
}

// Router builds the analytics service router.
func (h *Handlers) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), handlers.ObserveRequests())

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/api/v1/orders/completed", h.IngestCompletedOrder)

	return router
}

// Health handles GET /health.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "analytics-service",
	})
}

// IngestCompletedOrder handles POST /api/v1/orders/completed.
func (h *Handlers) IngestCompletedOrder(c *gin.Context) {
	var order models.CompletedOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if order.OrderID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	result, err := h.service.IngestCompletedOrder(c.Request.Context(), order)
	if err != nil {
		var dependency *apperrors.DependencyError
		if errors.As(err, &dependency) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream service unavailable"})
			return
		}
		h.logger.Error("ingestion failed", zap.Int64("order_id", order.OrderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":       result.OrderID,
		"items_ingested": result.ItemsIngested,
		"items_skipped":  result.ItemsSkipped,
	})
}
