package workorder

import (
	"context"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Filter defines filtering options for work order queries
type Filter struct {
	shared.Filter
	Status       *Status
	VehiclePlate string
}

// Repository defines the interface for work order persistence
type Repository interface {
	// FindByID finds an active (not soft-deleted) work order
	FindByID(ctx context.Context, id uuid.UUID) (*WorkOrder, error)

	// FindByIDForUpdate finds a work order and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*WorkOrder, error)

	// FindAll lists active work orders
	FindAll(ctx context.Context, filter Filter) ([]WorkOrder, int64, error)

	// Save creates or updates a work order
	Save(ctx context.Context, wo *WorkOrder) error

	// RecalcTotals recomputes parts, labor and total from active lines and persists them
	RecalcTotals(ctx context.Context, id uuid.UUID) (*WorkOrder, error)
}

// LineRepository persists part and labor lines
type LineRepository interface {
	SaveItem(ctx context.Context, item *Item) error
	FindItem(ctx context.Context, workOrderID, itemID uuid.UUID) (*Item, error)
	ListItems(ctx context.Context, workOrderID uuid.UUID) ([]Item, error)
	SaveLabor(ctx context.Context, labor *Labor) error
	FindLabor(ctx context.Context, workOrderID, laborID uuid.UUID) (*Labor, error)
	ListLabors(ctx context.Context, workOrderID uuid.UUID) ([]Labor, error)

	// PartsCost sums quantity times unit cost over active items
	PartsCost(ctx context.Context, workOrderID uuid.UUID) (decimal.Decimal, error)
}

// InventoryCollaborator moves stock when a work order enters or leaves the closed set
type InventoryCollaborator interface {
	AdjustStock(ctx context.Context, workOrderID uuid.UUID, adjustment StockAdjustment) error
}
