package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// CartClient provides operations against the cart service. The order saga
// reads the cart through here and writes back the corrections it applies.
type CartClient interface {
	GetCart(ctx context.Context, userID string) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, cartItemID int64, quantity int) error
	DeleteItem(ctx context.Context, cartItemID int64) error
	ClearCart(ctx context.Context, cartID int64) error
}

// HTTPCartClient implements CartClient using HTTP.
type HTTPCartClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPCartClient creates a new HTTP-based cart client.
func NewHTTPCartClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPCartClient {
	return &HTTPCartClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// GetCart retrieves the active cart for a user.
// Returns apperrors.ErrCartNotFound when the user has no cart.
func (c *HTTPCartClient) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	url := fmt.Sprintf("%s/api/v1/carts/by-user/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch cart",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, apperrors.NewDependencyError("cart-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrCartNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewDependencyError("cart-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var cart models.Cart
	if err := json.NewDecoder(resp.Body).Decode(&cart); err != nil {
		return nil, apperrors.NewDependencyError("cart-service", err)
	}

	return &cart, nil
}

// UpdateItemQuantity clamps a cart item to a new quantity.
func (c *HTTPCartClient) UpdateItemQuantity(ctx context.Context, cartItemID int64, quantity int) error {
	body, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/cart-items/%d", c.baseURL, cartItemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	return c.do(req, "update cart item")
}

// DeleteItem removes a cart item.
func (c *HTTPCartClient) DeleteItem(ctx context.Context, cartItemID int64) error {
	url := fmt.Sprintf("%s/api/v1/cart-items/%d", c.baseURL, cartItemID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	return c.do(req, "delete cart item")
}

// ClearCart empties the cart after a successful order. A failure here is
// logged by the caller but does not fail the order.
func (c *HTTPCartClient) ClearCart(ctx context.Context, cartID int64) error {
	url := fmt.Sprintf("%s/api/v1/carts/%d/items", c.baseURL, cartID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	c.setHeaders(req)

	return c.do(req, "clear cart")
}

func (c *HTTPCartClient) do(req *http.Request, op string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("cart service call failed",
			zap.String("op", op),
			zap.Error(err),
		)
		return apperrors.NewDependencyError("cart-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return apperrors.NewDependencyError("cart-service",
			fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode))
	}

	return nil
}

func (c *HTTPCartClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
