// Package inventory connects work orders to the parts inventory service.
// Stock leaves the shelf when a work order enters the closed set and comes back when it leaves.
package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxErrorBodySize caps how much of an error response is kept for the log
const maxErrorBodySize = 4 * 1024

// Errors returned while building the client
var (
	ErrMissingBaseURL = errors.New("inventory: base URL is required")
	ErrInvalidBaseURL = errors.New("inventory: base URL must start with http:// or https://")
)

// stockMovementRequest is the body posted to the inventory service
type stockMovementRequest struct {
	WorkOrderID string `json:"work_order_id"`
	Direction   string `json:"direction"`
	RequestedAt string `json:"requested_at"`
}

// HTTPClient posts stock movements to the inventory service
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewHTTPClient creates an inventory client from configuration
func NewHTTPClient(cfg config.InventoryConfig, logger *zap.Logger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, ErrInvalidBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}, nil
}

// AdjustStock implements workorder.InventoryCollaborator.
// A 422 from the service (for example not enough parts on the shelf) becomes a ValidationError
// so the status change is rejected instead of failing as an internal error.
func (c *HTTPClient) AdjustStock(ctx context.Context, workOrderID uuid.UUID, adjustment workorder.StockAdjustment) error {
	body, err := json.Marshal(stockMovementRequest{
		WorkOrderID: workOrderID.String(),
		Direction:   string(adjustment),
		RequestedAt: c.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode stock movement: %w", err)
	}

	url := fmt.Sprintf("%s/work-orders/%s/stock-movements", c.baseURL, workOrderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build stock movement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("inventory service unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		c.logger.Debug("Stock movement accepted",
			zap.String("work_order_id", workOrderID.String()),
			zap.String("direction", string(adjustment)),
			zap.Int("status", resp.StatusCode),
		)
		return nil
	case resp.StatusCode == http.StatusUnprocessableEntity:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return shared.NewValidationError(fmt.Sprintf("inventory rejected %s movement: %s",
			strings.ToLower(string(adjustment)), strings.TrimSpace(string(msg))))
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		c.logger.Warn("Inventory service returned an error",
			zap.String("work_order_id", workOrderID.String()),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(msg)),
		)
		return fmt.Errorf("inventory service returned status %d", resp.StatusCode)
	}
}
