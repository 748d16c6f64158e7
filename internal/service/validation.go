package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/clients"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// ValidatedLine is a cart line that passed every check, enriched with the
// catalog data an order item needs at creation time.
type ValidatedLine struct {
	CartItemID         int64
	ProductVariationID string
	ProductID          string
	ShopID             string
	Quantity           int
	AvailableStock     int
}

// CartValidator checks every cart line against the live catalog.
//
// Lines are validated sequentially in cart order so stock checks are
// deterministic within one run. Every failing line carries the corrective
// action the saga will apply to the cart.
type CartValidator struct {
	products clients.ProductClient
	logger   *zap.Logger
}

// NewCartValidator creates a validator over the product catalog client.
func NewCartValidator(products clients.ProductClient, logger *zap.Logger) *CartValidator {
	return &CartValidator{
		products: products,
		logger:   logger,
	}
}

// ValidateCart returns the accepted lines and the corrections for every
// rejected one. A dependency failure aborts validation; a missing variation
// does not, it becomes a remove correction.
func (v *CartValidator) ValidateCart(ctx context.Context, cart *models.Cart) ([]ValidatedLine, []models.CartCorrection, error) {
	validated := make([]ValidatedLine, 0, len(cart.Items))
	corrections := make([]models.CartCorrection, 0)

	for _, item := range cart.Items {
		line, correction, err := v.validateLine(ctx, item)
		if err != nil {
			return nil, nil, err
		}
		if correction != nil {
			corrections = append(corrections, *correction)
			continue
		}
		validated = append(validated, *line)
	}

	return validated, corrections, nil
}

func (v *CartValidator) validateLine(ctx context.Context, item models.CartItem) (*ValidatedLine, *models.CartCorrection, error) {
	variation, err := v.products.GetVariation(ctx, item.ProductVariationID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, v.remove(item, models.ReasonNotFound, ""), nil
	}
	if err != nil {
		return nil, nil, err
	}

	if variation.Product.ID == "" {
		return nil, v.remove(item, models.ReasonProductNotFound, ""), nil
	}
	if !variation.Product.IsActive {
		return nil, v.remove(item, models.ReasonInactive, variation.Product.Title), nil
	}
	if variation.Product.ShopID == "" {
		return nil, v.remove(item, models.ReasonInvalidShop, variation.Product.Title), nil
	}
	if variation.Amount == 0 {
		return nil, v.remove(item, models.ReasonOutOfStock, variation.Product.Title), nil
	}
	if variation.Amount < item.Quantity {
		v.logger.Debug("clamping cart line to available stock",
			zap.Int64("cart_item_id", item.ID),
			zap.Int("requested", item.Quantity),
			zap.Int("available", variation.Amount),
		)
		return nil, &models.CartCorrection{
			CartItemID:         item.ID,
			ProductVariationID: item.ProductVariationID,
			ProductTitle:       variation.Product.Title,
			Action:             models.ActionUpdate,
			Reason:             models.ReasonInsufficientStock,
			OldQuantity:        item.Quantity,
			NewQuantity:        variation.Amount,
		}, nil
	}

	return &ValidatedLine{
		CartItemID:         item.ID,
		ProductVariationID: item.ProductVariationID,
		ProductID:          variation.Product.ID,
		ShopID:             variation.Product.ShopID,
		Quantity:           item.Quantity,
		AvailableStock:     variation.Amount,
	}, nil, nil
}

func (v *CartValidator) remove(item models.CartItem, reason models.CorrectionReason, title string) *models.CartCorrection {
	return &models.CartCorrection{
		CartItemID:         item.ID,
		ProductVariationID: item.ProductVariationID,
		ProductTitle:       title,
		Action:             models.ActionRemove,
		Reason:             reason,
		OldQuantity:        item.Quantity,
	}
}
