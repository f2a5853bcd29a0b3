package inventory

import (
	"context"

	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggingCollaborator records stock movements in the log only.
// It stands in for the inventory service when no endpoint is configured.
type LoggingCollaborator struct {
	logger *zap.Logger
}

// NewLoggingCollaborator creates a LoggingCollaborator
func NewLoggingCollaborator(logger *zap.Logger) *LoggingCollaborator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingCollaborator{logger: logger}
}

// AdjustStock implements workorder.InventoryCollaborator
func (l *LoggingCollaborator) AdjustStock(_ context.Context, workOrderID uuid.UUID, adjustment workorder.StockAdjustment) error {
	l.logger.Info("Stock movement (inventory service disabled)",
		zap.String("work_order_id", workOrderID.String()),
		zap.String("direction", string(adjustment)),
	)
	return nil
}

// NewCollaborator returns the HTTP client when the inventory service is enabled
// and the logging stand-in otherwise.
func NewCollaborator(cfg config.InventoryConfig, logger *zap.Logger) (workorder.InventoryCollaborator, error) {
	if !cfg.Enabled {
		return NewLoggingCollaborator(logger), nil
	}
	return NewHTTPClient(cfg, logger)
}
