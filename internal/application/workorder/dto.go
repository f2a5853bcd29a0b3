package workorder

import (
	"time"

	"github.com/garage/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateWorkOrderRequest represents a request to open a work order
type CreateWorkOrderRequest struct {
	Number       string     `json:"number" binding:"required,min=1,max=50"`
	CustomerID   *uuid.UUID `json:"customer_id"`
	VehiclePlate string     `json:"vehicle_plate" binding:"max=10"`
	Description  string     `json:"description" binding:"max=2000"`
	Status       string     `json:"status" binding:"omitempty,oneof=SCHEDULED QUOTE OPEN"`
}

// UpdateWorkOrderRequest changes free-text fields and optionally moves the status
type UpdateWorkOrderRequest struct {
	Status       *string `json:"status"`
	VehiclePlate *string `json:"vehicle_plate" binding:"omitempty,max=10"`
	Description  *string `json:"description" binding:"omitempty,max=2000"`
	Diagnosis    *string `json:"diagnosis" binding:"omitempty,max=2000"`
	Notes        *string `json:"notes" binding:"omitempty,max=2000"`
}

// AddItemRequest adds a part line
type AddItemRequest struct {
	PartID      *uuid.UUID      `json:"part_id"`
	Description string          `json:"description" binding:"required,min=1,max=200"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

// AddLaborRequest adds a labor line
type AddLaborRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=200"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
}

// ListWorkOrdersRequest filters the work order listing
type ListWorkOrdersRequest struct {
	Status       string `form:"status"`
	VehiclePlate string `form:"vehicle_plate"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy      string `form:"order_by"`
	OrderDir     string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// WorkOrderResponse represents a work order in API responses
type WorkOrderResponse struct {
	ID           uuid.UUID       `json:"id"`
	Number       string          `json:"number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	VehiclePlate string          `json:"vehicle_plate"`
	Description  string          `json:"description"`
	Diagnosis    string          `json:"diagnosis"`
	Notes        string          `json:"notes"`
	Status       string          `json:"status"`
	PartsTotal   decimal.Decimal `json:"parts_total"`
	LaborTotal   decimal.Decimal `json:"labor_total"`
	Total        decimal.Decimal `json:"total"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// WorkOrderDetailResponse is a work order with its active lines
type WorkOrderDetailResponse struct {
	WorkOrderResponse
	Items  []workorder.Item  `json:"items"`
	Labors []workorder.Labor `json:"labors"`
}

// ToWorkOrderResponse converts the aggregate to its response shape
func ToWorkOrderResponse(wo *workorder.WorkOrder) WorkOrderResponse {
	return WorkOrderResponse{
		ID:           wo.ID,
		Number:       wo.Number,
		CustomerID:   wo.CustomerID,
		VehiclePlate: wo.VehiclePlate,
		Description:  wo.Description,
		Diagnosis:    wo.Diagnosis,
		Notes:        wo.Notes,
		Status:       string(wo.Status),
		PartsTotal:   wo.PartsTotal,
		LaborTotal:   wo.LaborTotal,
		Total:        wo.Total,
		ClosedAt:     wo.ClosedAt,
		CreatedAt:    wo.CreatedAt,
		UpdatedAt:    wo.UpdatedAt,
		Version:      wo.Version,
	}
}
