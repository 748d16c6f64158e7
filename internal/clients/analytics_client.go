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

// AnalyticsClient pushes completed orders to the analytics service.
// Failures are non-fatal for the caller: the order is already approved and
// the projection can be replayed.
type AnalyticsClient interface {
	SendCompletedOrder(ctx context.Context, order models.CompletedOrder) error
}

// HTTPAnalyticsClient implements AnalyticsClient using HTTP.
type HTTPAnalyticsClient struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
	logger     *zap.Logger
}

// NewHTTPAnalyticsClient creates a new HTTP-based analytics client.
func NewHTTPAnalyticsClient(cfg config.ServiceConfig, logger *zap.Logger) *HTTPAnalyticsClient {
	return &HTTPAnalyticsClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// SendCompletedOrder posts an approved order to the analytics ingestion
// endpoint.
func (c *HTTPAnalyticsClient) SendCompletedOrder(ctx context.Context, order models.CompletedOrder) error {
	body, err := json.Marshal(order)
	if err != nil {
		return err
	}

	url := c.baseURL + "/api/v1/orders/completed"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to push completed order",
			zap.Int64("order_id", order.OrderID),
			zap.Error(err),
		)
		return apperrors.NewDependencyError("analytics-service", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return apperrors.NewDependencyError("analytics-service",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	c.logger.Info("completed order pushed to analytics",
		zap.Int64("order_id", order.OrderID),
		zap.Int("items", len(order.Items)),
	)

	return nil
}
