package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

func TestValidateCart_Reasons(t *testing.T) {
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-inactive": {
			Amount:  5,
			Product: models.ProductSummary{ID: "prod-1", ShopID: "shop-1", IsActive: false, Title: "Inactive"},
		},
		"var-no-product": {
			Amount:  5,
			Product: models.ProductSummary{},
		},
		"var-no-shop": {
			Amount:  5,
			Product: models.ProductSummary{ID: "prod-2", IsActive: true, Title: "Orphan"},
		},
		"var-empty": {
			Amount:  0,
			Product: models.ProductSummary{ID: "prod-3", ShopID: "shop-1", IsActive: true, Title: "Sold out"},
		},
	}}
	validator := NewCartValidator(products, zap.NewNop())

	tests := []struct {
		name      string
		variation string
		reason    models.CorrectionReason
	}{
		{"missing variation", "var-404", models.ReasonNotFound},
		{"inactive product", "var-inactive", models.ReasonInactive},
		{"missing product", "var-no-product", models.ReasonProductNotFound},
		{"unresolvable shop", "var-no-shop", models.ReasonInvalidShop},
		{"zero stock", "var-empty", models.ReasonOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := &models.Cart{Items: []models.CartItem{
				{ID: 1, ProductVariationID: tt.variation, Quantity: 1},
			}}

			validated, corrections, err := validator.ValidateCart(context.Background(), cart)
			require.NoError(t, err)
			assert.Empty(t, validated)
			require.Len(t, corrections, 1)
			assert.Equal(t, models.ActionRemove, corrections[0].Action)
			assert.Equal(t, tt.reason, corrections[0].Reason)
		})
	}
}

func TestValidateCart_AcceptedLineCarriesCatalogData(t *testing.T) {
	products := &fakeProductClient{variations: map[string]*models.Variation{
		"var-a": activeVariation("prod-a", "shop-9", 7),
	}}
	validator := NewCartValidator(products, zap.NewNop())

	cart := &models.Cart{Items: []models.CartItem{
		{ID: 3, ProductVariationID: "var-a", Quantity: 7},
	}}

	validated, corrections, err := validator.ValidateCart(context.Background(), cart)
	require.NoError(t, err)
	assert.Empty(t, corrections)
	require.Len(t, validated, 1)

	line := validated[0]
	assert.Equal(t, "prod-a", line.ProductID)
	assert.Equal(t, "shop-9", line.ShopID)
	assert.Equal(t, 7, line.Quantity)
	assert.Equal(t, 7, line.AvailableStock)
}

func TestValidateCart_DependencyErrorAborts(t *testing.T) {
	products := &fakeProductClient{err: assert.AnError}
	validator := NewCartValidator(products, zap.NewNop())

	cart := &models.Cart{Items: []models.CartItem{
		{ID: 1, ProductVariationID: "var-a", Quantity: 1},
	}}

	_, _, err := validator.ValidateCart(context.Background(), cart)
	assert.Error(t, err)
}
