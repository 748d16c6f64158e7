package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/config"
)

// ShopClient answers ownership questions for the status workflow.
type ShopClient interface {
	GetUserShopIDs(ctx context.Context, userID string) ([]string, error)
}

// HTTPShopClient implements ShopClient using HTTP.
type HTTPShopClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPShopClient creates a new HTTP-based shop client.
func NewHTTPShopClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPShopClient {
	return &HTTPShopClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// GetUserShopIDs returns the ids of shops owned by a user. A user with no
// shops gets an empty slice, not an error.
func (c *HTTPShopClient) GetUserShopIDs(ctx context.Context, userID string) ([]string, error) {
	url := fmt.Sprintf("%s/api/v1/shops/by-owner/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch owned shops",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, apperrors.NewDependencyError("shop-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []string{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewDependencyError("shop-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload struct {
		ShopIDs []string `json:"shop_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.NewDependencyError("shop-service", err)
	}

	return payload.ShopIDs, nil
}
