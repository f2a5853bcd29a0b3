package workorder

import (
	"strings"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrder is a tracked repair job against a customer vehicle
type WorkOrder struct {
	shared.BaseAggregateRoot
	Number       string          `json:"number"`
	CustomerID   *uuid.UUID      `json:"customer_id,omitempty"`
	VehiclePlate string          `json:"vehicle_plate"`
	Description  string          `json:"description"`
	Diagnosis    string          `json:"diagnosis"`
	Notes        string          `json:"notes"`
	Status       Status          `json:"status"`
	PartsTotal   decimal.Decimal `json:"parts_total"`
	LaborTotal   decimal.Decimal `json:"labor_total"`
	Total        decimal.Decimal `json:"total"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
}

// NewWorkOrder creates a work order in one of the accepted initial statuses
func NewWorkOrder(number, vehiclePlate, description string, status Status) (*WorkOrder, error) {
	if err := ValidateInitialStatus(status); err != nil {
		return nil, err
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewValidationError("work order number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewValidationError("work order number cannot exceed 50 characters")
	}

	return &WorkOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		VehiclePlate:      strings.ToUpper(strings.TrimSpace(vehiclePlate)),
		Description:       description,
		Status:            status,
		PartsTotal:        decimal.Zero,
		LaborTotal:        decimal.Zero,
		Total:             decimal.Zero,
	}, nil
}

// Details are the free-text fields of a work order. Nil fields are left untouched.
type Details struct {
	VehiclePlate *string
	Description  *string
	Diagnosis    *string
	Notes        *string
}

// ApplyDetails edits free-text fields. No status guard applies here: whether a CLOSED
// work order may still receive such edits is an unresolved business decision.
func (wo *WorkOrder) ApplyDetails(d Details) {
	if d.VehiclePlate != nil {
		wo.VehiclePlate = strings.ToUpper(strings.TrimSpace(*d.VehiclePlate))
	}
	if d.Description != nil {
		wo.Description = *d.Description
	}
	if d.Diagnosis != nil {
		wo.Diagnosis = *d.Diagnosis
	}
	if d.Notes != nil {
		wo.Notes = *d.Notes
	}
	wo.Touch()
}

// ChangeStatus validates and applies a status change, returning the previous status.
// A nil next leaves the status as is.
func (wo *WorkOrder) ChangeStatus(next *Status) (Status, error) {
	prev := wo.Status
	if err := ValidateTransition(prev, next); err != nil {
		return prev, err
	}
	if next == nil || *next == prev {
		return prev, nil
	}
	wo.Status = *next
	if *next == StatusClosed {
		now := time.Now()
		wo.ClosedAt = &now
	}
	wo.Touch()
	wo.IncrementVersion()
	return prev, nil
}

// IsReadyToClose reports whether consolidation may run
func (wo *WorkOrder) IsReadyToClose() bool {
	return wo.Status == StatusReadyToClose
}

// EnsureLinesEditable rejects line changes once the work order reached a terminal status
func (wo *WorkOrder) EnsureLinesEditable() error {
	if wo.Status.IsTerminal() {
		return shared.NewImmutabilityError("lines of a " + strings.ToLower(string(wo.Status)) + " work order cannot change")
	}
	return nil
}

// ApplyTotals sets parts and labor totals and derives the grand total
func (wo *WorkOrder) ApplyTotals(parts, labor decimal.Decimal) {
	wo.PartsTotal = parts
	wo.LaborTotal = labor
	wo.Total = parts.Add(labor)
}

// IsDeleted reports whether the work order was soft-deleted
func (wo *WorkOrder) IsDeleted() bool {
	return wo.DeletedAt != nil
}

// MarkDeleted soft-deletes the work order. A READY_TO_CLOSE work order still
// holds deducted stock and must be reopened or cancelled first.
func (wo *WorkOrder) MarkDeleted() error {
	if wo.Status == StatusClosed {
		return shared.NewImmutabilityError("closed work order cannot be deleted")
	}
	if wo.Status.InClosedSet() {
		return shared.NewValidationError("work order ready to close holds deducted stock; reopen or cancel it before deleting")
	}
	now := time.Now()
	wo.DeletedAt = &now
	wo.Touch()
	return nil
}

// Item is a part line on a work order
type Item struct {
	shared.BaseEntity
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	PartID      *uuid.UUID      `json:"part_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NewItem creates a part line
func NewItem(workOrderID uuid.UUID, partID *uuid.UUID, description string, quantity, unitPrice, unitCost decimal.Decimal) (*Item, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewValidationError("item quantity must be positive")
	}
	if unitPrice.IsNegative() || unitCost.IsNegative() {
		return nil, shared.NewValidationError("item price and cost cannot be negative")
	}
	return &Item{
		BaseEntity:  shared.NewBaseEntity(),
		WorkOrderID: workOrderID,
		PartID:      partID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		UnitCost:    unitCost,
	}, nil
}

// Subtotal is quantity times unit price
func (i *Item) Subtotal() decimal.Decimal {
	return i.Quantity.Mul(i.UnitPrice)
}

// Cost is quantity times unit cost
func (i *Item) Cost() decimal.Decimal {
	return i.Quantity.Mul(i.UnitCost)
}

// Labor is a service line on a work order
type Labor struct {
	shared.BaseEntity
	WorkOrderID uuid.UUID       `json:"work_order_id"`
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
}

// NewLabor creates a labor line
func NewLabor(workOrderID uuid.UUID, description string, hours, hourlyRate decimal.Decimal) (*Labor, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("labor description cannot be empty")
	}
	if !hours.IsPositive() {
		return nil, shared.NewValidationError("labor hours must be positive")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewValidationError("labor rate cannot be negative")
	}
	return &Labor{
		BaseEntity:  shared.NewBaseEntity(),
		WorkOrderID: workOrderID,
		Description: description,
		Hours:       hours,
		HourlyRate:  hourlyRate,
	}, nil
}

// Subtotal is hours times rate
func (l *Labor) Subtotal() decimal.Decimal {
	return l.Hours.Mul(l.HourlyRate)
}
