package handlers

import (
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/service"
)

// Handlers holds all HTTP handlers for the orders service.
type Handlers struct {
	orders     *service.OrderService
	itemStatus *service.ItemStatusService
	config     *config.Config
	logger     *zap.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	orders *service.OrderService,
	itemStatus *service.ItemStatusService,
	cfg *config.Config,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		orders:     orders,
		itemStatus: itemStatus,
		config:     cfg,
		logger:     logger,
	}
}
