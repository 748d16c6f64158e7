package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

type updateItemStatusRequest struct {
	Status int `json:"status" binding:"required"`
}

// UpdateItemStatus handles PATCH /api/v1/order-items/:id/status.
//
// Only the owner of the shop the item was sold from may transition it.
func (h *Handlers) UpdateItemStatus(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order item id"})
		return
	}

	var req updateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	item, err := h.itemStatus.UpdateItemStatus(
		c.Request.Context(),
		UserID(c),
		itemID,
		models.ItemStatus(req.Status),
	)
	if err != nil {
		h.renderOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}
