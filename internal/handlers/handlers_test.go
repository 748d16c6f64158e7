package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
	"github.com/mercato-shop/mercato-orders-platform/internal/service"
)

type stubCartClient struct {
	cart    *models.Cart
	getErr  error
	deletes []int64
}

func (s *stubCartClient) GetCart(context.Context, string) (*models.Cart, error) {
	return s.cart, s.getErr
}

func (s *stubCartClient) UpdateItemQuantity(context.Context, int64, int) error { return nil }

func (s *stubCartClient) DeleteItem(_ context.Context, id int64) error {
	s.deletes = append(s.deletes, id)
	return nil
}

func (s *stubCartClient) ClearCart(context.Context, int64) error { return nil }

type stubProductClient struct {
	variations map[string]*models.Variation
}

func (s *stubProductClient) GetVariation(_ context.Context, id string) (*models.Variation, error) {
	v, ok := s.variations[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return v, nil
}

func newTestRouter(carts *stubCartClient, products *stubProductClient) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	validator := service.NewCartValidator(products, logger)
	orders := service.NewOrderService(nil, carts, validator, nil, nil, logger)
	h := NewHandlers(orders, nil, nil, logger)

	router := gin.New()
	router.GET("/health", h.Health)
	router.POST("/api/v1/orders/from-cart", RequireUser(), h.CreateFromCart)
	return router
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubCartClient{}, &stubProductClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "orders-service", resp["service"])
}

func TestCreateFromCart_RequiresIdentity(t *testing.T) {
	router := newTestRouter(&stubCartClient{}, &stubProductClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/from-cart", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateFromCart_CartNotFound(t *testing.T) {
	router := newTestRouter(&stubCartClient{getErr: apperrors.ErrCartNotFound}, &stubProductClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/from-cart", nil)
	req.Header.Set("X-User-ID", "user-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	router := newTestRouter(&stubCartClient{cart: &models.Cart{ID: 1}}, &stubProductClient{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/from-cart", nil)
	req.Header.Set("X-User-ID", "user-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateFromCart_ConflictCarriesDiff(t *testing.T) {
	carts := &stubCartClient{cart: &models.Cart{
		ID:     44,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 9, ShopCartID: 44, ProductVariationID: "var-gone", Quantity: 2},
		},
	}}
	router := newTestRouter(carts, &stubProductClient{variations: map[string]*models.Variation{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/from-cart", nil)
	req.Header.Set("X-User-ID", "user-1")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)

	var resp struct {
		CartID      int64                   `json:"cart_id"`
		IssuesFound int                     `json:"issues_found"`
		ItemsFixed  int                     `json:"items_fixed"`
		Details     []models.CartCorrection `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(44), resp.CartID)
	assert.Equal(t, 1, resp.IssuesFound)
	assert.Equal(t, 1, resp.ItemsFixed)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, models.ActionRemove, resp.Details[0].Action)

	// The repair was applied, not just reported.
	assert.Equal(t, []int64{9}, carts.deletes)
}
