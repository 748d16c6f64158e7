package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// CreateFromCart handles POST /api/v1/orders/from-cart.
//
// 201 when the whole cart converted; 409 with the correction diff when any
// line failed validation (the cart is already repaired, the client should
// retry); 404 for a missing cart; 400 for an empty one.
func (h *Handlers) CreateFromCart(c *gin.Context) {
	userID := UserID(c)

	order, err := h.orders.CreateFromCart(c.Request.Context(), userID)
	if err != nil {
		h.renderOrderError(c, err)
		return
	}

	totalQuantity := 0
	for _, item := range order.Items {
		totalQuantity += item.Quantity
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":       order.ID,
		"items_count":    len(order.Items),
		"total_quantity": totalQuantity,
	})
}

// GetOrder handles GET /api/v1/orders/:id.
func (h *Handlers) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.renderOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/v1/orders for the authenticated user.
func (h *Handlers) ListOrders(c *gin.Context) {
	userID := UserID(c)

	orders, err := h.orders.ListOrders(c.Request.Context(), userID)
	if err != nil {
		h.renderOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

func (h *Handlers) renderOrderError(c *gin.Context, err error) {
	var conflict *models.StockConflict
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"cart_id":      conflict.CartID,
			"issues_found": conflict.IssuesFound,
			"items_fixed":  conflict.ItemsFixed,
			"details":      conflict.Details,
		})
		return
	}

	var validation *apperrors.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
		return
	}

	var dependency *apperrors.DependencyError
	if errors.As(err, &dependency) {
		h.logger.Error("upstream dependency failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream service unavailable"})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrCartNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
	case errors.Is(err, apperrors.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
