package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

func activeVariation(productID, shopID string, amount int) *models.Variation {
	return &models.Variation{
		Amount: amount,
		Product: models.ProductSummary{
			ID:       productID,
			ShopID:   shopID,
			IsActive: true,
			Title:    "Test Product",
		},
	}
}

func newOrderService(repo *fakeOrderRepo, carts *fakeCartClient, products *fakeProductClient, pub *fakePublisher) *OrderService {
	logger := zap.NewNop()
	validator := NewCartValidator(products, logger)
	return NewOrderService(repo, carts, validator, pub, nil, logger)
}

func TestCreateFromCart_Success(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{
		ID:     10,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 1, ShopCartID: 10, ProductVariationID: "var-a", Quantity: 2},
			{ID: 2, ShopCartID: 10, ProductVariationID: "var-b", Quantity: 1},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-a": activeVariation("prod-a", "shop-1", 5),
		"var-b": activeVariation("prod-b", "shop-2", 3),
	}}
	pub := &fakePublisher{}

	svc := newOrderService(repo, carts, products, pub)
	order, err := svc.CreateFromCart(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Len(t, order.Items, 2)
	assert.False(t, order.IsApproved)
	for _, item := range order.Items {
		assert.Equal(t, models.ItemStatusProcessing, item.Status)
		assert.NotEmpty(t, item.ShopID)
		assert.NotEmpty(t, item.ProductID)
		assert.Equal(t, int64(0), item.Price)
	}

	require.Len(t, pub.created, 1)
	assert.Equal(t, order.ID, pub.created[0].OrderID)
	assert.Equal(t, int64(10), pub.created[0].CartID)
	assert.Len(t, pub.created[0].Items, 2)
	assert.Len(t, pub.itemsCreated, 2)

	assert.Equal(t, []int64{10}, carts.cleared)
}

func TestCreateFromCart_InsufficientStockClampsAndConflicts(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{
		ID:     11,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 5, ShopCartID: 11, ProductVariationID: "var-a", Quantity: 8},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-a": activeVariation("prod-a", "shop-1", 3),
	}}

	svc := newOrderService(repo, carts, products, &fakePublisher{})
	_, err := svc.CreateFromCart(context.Background(), "user-1")

	var conflict *models.StockConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, int64(11), conflict.CartID)
	assert.Equal(t, 1, conflict.IssuesFound)
	assert.Equal(t, 1, conflict.ItemsFixed)

	require.Len(t, conflict.Details, 1)
	detail := conflict.Details[0]
	assert.Equal(t, models.ActionUpdate, detail.Action)
	assert.Equal(t, models.ReasonInsufficientStock, detail.Reason)
	assert.Equal(t, 8, detail.OldQuantity)
	assert.Equal(t, 3, detail.NewQuantity)
	assert.True(t, detail.Applied)

	// Cart was clamped, order store untouched.
	assert.Equal(t, 3, carts.updates[5])
	assert.Zero(t, repo.orderCount())
	assert.Zero(t, repo.itemCount())
}

func TestCreateFromCart_UnresolvableVariationRemovedAndConflicts(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{
		ID:     12,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 7, ShopCartID: 12, ProductVariationID: "var-gone", Quantity: 1},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{}}

	svc := newOrderService(repo, carts, products, &fakePublisher{})
	_, err := svc.CreateFromCart(context.Background(), "user-1")

	var conflict *models.StockConflict
	require.ErrorAs(t, err, &conflict)
	require.Len(t, conflict.Details, 1)
	assert.Equal(t, models.ActionRemove, conflict.Details[0].Action)
	assert.Equal(t, models.ReasonNotFound, conflict.Details[0].Reason)

	assert.Equal(t, []int64{7}, carts.deletes)
	assert.Zero(t, repo.orderCount())
	assert.Zero(t, repo.itemCount())
}

func TestCreateFromCart_OneBadLineBlocksWholeOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{
		ID:     13,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 1, ShopCartID: 13, ProductVariationID: "var-ok", Quantity: 1},
			{ID: 2, ShopCartID: 13, ProductVariationID: "var-empty", Quantity: 1},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-ok":    activeVariation("prod-a", "shop-1", 10),
		"var-empty": activeVariation("prod-b", "shop-1", 0),
	}}

	svc := newOrderService(repo, carts, products, &fakePublisher{})
	_, err := svc.CreateFromCart(context.Background(), "user-1")

	var conflict *models.StockConflict
	require.ErrorAs(t, err, &conflict)
	// Only the bad line is corrected, but no order is written at all.
	assert.Equal(t, 1, conflict.IssuesFound)
	assert.Equal(t, models.ReasonOutOfStock, conflict.Details[0].Reason)
	assert.Zero(t, repo.orderCount())
	assert.Zero(t, repo.itemCount())
}

func TestCreateFromCart_ItemInsertFailureDeletesOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	repo.failItemAt = 2
	carts := newFakeCartClient(&models.Cart{
		ID:     14,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 1, ShopCartID: 14, ProductVariationID: "var-a", Quantity: 1},
			{ID: 2, ShopCartID: 14, ProductVariationID: "var-b", Quantity: 1},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-a": activeVariation("prod-a", "shop-1", 5),
		"var-b": activeVariation("prod-b", "shop-1", 5),
	}}
	pub := &fakePublisher{}

	svc := newOrderService(repo, carts, products, pub)
	_, err := svc.CreateFromCart(context.Background(), "user-1")
	require.Error(t, err)

	// Compensating delete: no partial order survives, nothing published.
	assert.Zero(t, repo.orderCount())
	assert.Zero(t, repo.itemCount())
	assert.Len(t, repo.deletedOrders, 1)
	assert.Empty(t, pub.created)
}

func TestCreateFromCart_EmptyCart(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{ID: 15, UserID: "user-1"})
	svc := newOrderService(repo, carts, &fakeProductClient{}, &fakePublisher{})

	_, err := svc.CreateFromCart(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.Zero(t, repo.orderCount())
}

func TestCreateFromCart_CartNotFound(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(nil)
	carts.getErr = apperrors.ErrCartNotFound
	svc := newOrderService(repo, carts, &fakeProductClient{}, &fakePublisher{})

	_, err := svc.CreateFromCart(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrCartNotFound)
}

func TestCreateFromCart_PublishFailureDoesNotFailOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	carts := newFakeCartClient(&models.Cart{
		ID:     16,
		UserID: "user-1",
		Items: []models.CartItem{
			{ID: 1, ShopCartID: 16, ProductVariationID: "var-a", Quantity: 1},
		},
	})
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-a": activeVariation("prod-a", "shop-1", 5),
	}}
	pub := &fakePublisher{failOnCreated: true}

	svc := newOrderService(repo, carts, products, pub)
	order, err := svc.CreateFromCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.Equal(t, 1, repo.orderCount())
}
