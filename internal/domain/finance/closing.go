package finance

import (
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FinancialClosing is the terminal record marking a work order as financially settled.
// Exactly one exists per work order and it never changes after creation.
type FinancialClosing struct {
	shared.BaseEntity
	WorkOrderID   uuid.UUID       `json:"work_order_id"`
	RealPartsCost decimal.Decimal `json:"real_parts_cost"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	ClosedBy      string          `json:"closed_by,omitempty"`
	ClosedAt      time.Time       `json:"closed_at"`
}

// NewFinancialClosing creates the closing record
func NewFinancialClosing(workOrderID uuid.UUID, realPartsCost, totalRevenue decimal.Decimal, closedBy string) (*FinancialClosing, error) {
	if realPartsCost.IsNegative() {
		return nil, shared.NewValidationError("real parts cost cannot be negative")
	}
	now := time.Now()
	c := &FinancialClosing{
		BaseEntity:    shared.NewBaseEntity(),
		WorkOrderID:   workOrderID,
		RealPartsCost: realPartsCost,
		TotalRevenue:  totalRevenue,
		ClosedBy:      closedBy,
		ClosedAt:      now,
	}
	return c, nil
}

// GrossMargin is revenue minus the real cost of parts
func (c *FinancialClosing) GrossMargin() decimal.Decimal {
	return c.TotalRevenue.Sub(c.RealPartsCost)
}
