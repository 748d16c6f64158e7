package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mercato-shop/mercato-orders-platform/internal/apperrors"
	"github.com/mercato-shop/mercato-orders-platform/internal/config"
	"github.com/mercato-shop/mercato-orders-platform/internal/models"
)

// ProductClient provides read access to the product catalog.
type ProductClient interface {
	GetVariation(ctx context.Context, variationID string) (*models.Variation, error)
}

// HTTPProductClient implements ProductClient using HTTP.
type HTTPProductClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPProductClient creates a new HTTP-based product client.
func NewHTTPProductClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPProductClient {
	return &HTTPProductClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// GetVariation retrieves a product variation with its product summary.
// Returns apperrors.ErrNotFound when the catalog has no such variation.
func (c *HTTPProductClient) GetVariation(ctx context.Context, variationID string) (*models.Variation, error) {
	url := fmt.Sprintf("%s/api/v1/variations/%s", c.baseURL, variationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to fetch variation",
			zap.String("product_variation_id", variationID),
			zap.Error(err),
		)
		return nil, apperrors.NewDependencyError("product-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewDependencyError("product-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var variation models.Variation
	if err := json.NewDecoder(resp.Body).Decode(&variation); err != nil {
		return nil, apperrors.NewDependencyError("product-service", err)
	}

	return &variation, nil
}

func (c *HTTPProductClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
}
