// Package workorder implements the work order use cases: intake, line edits,
// status changes with their inventory side effect, listing and soft delete.
package workorder

import (
	"context"
	"strings"
	"time"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles work order business operations
type Service struct {
	repo      workorder.Repository
	lines     workorder.LineRepository
	txScope   appshared.TransactionScope
	inventory workorder.InventoryCollaborator
	metrics   *telemetry.GarageMetrics
	logger    *zap.Logger
}

// NewService creates a new work order Service. metrics may be nil.
func NewService(
	repo workorder.Repository,
	lines workorder.LineRepository,
	txScope appshared.TransactionScope,
	inventory workorder.InventoryCollaborator,
	metrics *telemetry.GarageMetrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		lines:     lines,
		txScope:   txScope,
		inventory: inventory,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create opens a work order in one of the accepted initial statuses. OPEN is the default.
func (s *Service) Create(ctx context.Context, req CreateWorkOrderRequest) (*WorkOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "work_order", "create")
	defer span.End()

	status := workorder.StatusOpen
	if req.Status != "" {
		parsed, err := workorder.ParseStatus(req.Status)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		status = parsed
	}

	wo, err := workorder.NewWorkOrder(req.Number, req.VehiclePlate, req.Description, status)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	wo.CustomerID = req.CustomerID

	if err := s.repo.Save(ctx, wo); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrWorkOrderID, wo.ID, telemetry.SpanAttrStatus, string(wo.Status))

	s.logger.Info("Work order created",
		zap.String("work_order_id", wo.ID.String()),
		zap.String("number", wo.Number),
		zap.String("status", string(wo.Status)),
	)
	resp := ToWorkOrderResponse(wo)
	return &resp, nil
}

// GetByID returns a work order with its active lines
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*WorkOrderDetailResponse, error) {
	wo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.lines.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	labors, err := s.lines.ListLabors(ctx, id)
	if err != nil {
		return nil, err
	}
	return &WorkOrderDetailResponse{
		WorkOrderResponse: ToWorkOrderResponse(wo),
		Items:             items,
		Labors:            labors,
	}, nil
}

// List returns a page of active work orders
func (s *Service) List(ctx context.Context, req ListWorkOrdersRequest) (*shared.Paginated[WorkOrderResponse], error) {
	filter := workorder.Filter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		VehiclePlate: strings.ToUpper(strings.TrimSpace(req.VehiclePlate)),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if req.Status != "" {
		status, err := workorder.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	orders, total, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]WorkOrderResponse, len(orders))
	for i := range orders {
		out[i] = ToWorkOrderResponse(&orders[i])
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update edits free-text fields and applies a status change. The transition check,
// the inventory movement of a closed-set edge and the save share one transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateWorkOrderRequest) (*WorkOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "work_order", "update")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrWorkOrderID, id)

	var next *workorder.Status
	if req.Status != nil {
		parsed, err := workorder.ParseStatus(*req.Status)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		next = &parsed
	}

	var (
		result *workorder.WorkOrder
		prev   workorder.Status
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		prev, err = wo.ChangeStatus(next)
		if err != nil {
			return err
		}
		wo.ApplyDetails(workorder.Details{
			VehiclePlate: req.VehiclePlate,
			Description:  req.Description,
			Diagnosis:    req.Diagnosis,
			Notes:        req.Notes,
		})

		if err := repos.WorkOrderRepo().Save(ctx, wo); err != nil {
			return err
		}

		// The inventory call is the last step before commit: nothing local is
		// left to fail once stock has moved, except the commit itself.
		if adjustment, ok := workorder.StockAdjustmentFor(prev, wo.Status); ok {
			if err := s.inventory.AdjustStock(ctx, wo.ID, adjustment); err != nil {
				return err
			}
			s.logger.Info("Inventory adjusted",
				zap.String("work_order_id", wo.ID.String()),
				zap.String("adjustment", string(adjustment)),
			)
		}
		result = wo
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if prev != result.Status {
		s.metrics.StatusTransition(ctx, string(prev), string(result.Status))
		s.logger.Info("Work order status changed",
			zap.String("work_order_id", id.String()),
			zap.String("from", string(prev)),
			zap.String("to", string(result.Status)),
		)
	}
	resp := ToWorkOrderResponse(result)
	return &resp, nil
}

// Delete soft-deletes a work order. Work orders holding deducted stock
// (READY_TO_CLOSE or CLOSED) are refused.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "work_order", "delete")
	defer span.End()

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := wo.MarkDeleted(); err != nil {
			return err
		}
		return repos.WorkOrderRepo().Save(ctx, wo)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("Work order deleted", zap.String("work_order_id", id.String()))
	return nil
}

// AddItem adds a part line and recomputes the totals
func (s *Service) AddItem(ctx context.Context, id uuid.UUID, req AddItemRequest) (*WorkOrderResponse, error) {
	return s.editLines(ctx, id, "add_item", func(repos appshared.TransactionalRepositories) error {
		item, err := workorder.NewItem(id, req.PartID, req.Description, req.Quantity, req.UnitPrice, req.UnitCost)
		if err != nil {
			return err
		}
		return repos.LineRepo().SaveItem(ctx, item)
	})
}

// RemoveItem soft-deletes a part line and recomputes the totals
func (s *Service) RemoveItem(ctx context.Context, id, itemID uuid.UUID) (*WorkOrderResponse, error) {
	return s.editLines(ctx, id, "remove_item", func(repos appshared.TransactionalRepositories) error {
		item, err := repos.LineRepo().FindItem(ctx, id, itemID)
		if err != nil {
			return err
		}
		now := time.Now()
		item.DeletedAt = &now
		item.Touch()
		return repos.LineRepo().SaveItem(ctx, item)
	})
}

// AddLabor adds a labor line and recomputes the totals
func (s *Service) AddLabor(ctx context.Context, id uuid.UUID, req AddLaborRequest) (*WorkOrderResponse, error) {
	return s.editLines(ctx, id, "add_labor", func(repos appshared.TransactionalRepositories) error {
		labor, err := workorder.NewLabor(id, req.Description, req.Hours, req.HourlyRate)
		if err != nil {
			return err
		}
		return repos.LineRepo().SaveLabor(ctx, labor)
	})
}

// RemoveLabor soft-deletes a labor line and recomputes the totals
func (s *Service) RemoveLabor(ctx context.Context, id, laborID uuid.UUID) (*WorkOrderResponse, error) {
	return s.editLines(ctx, id, "remove_labor", func(repos appshared.TransactionalRepositories) error {
		labor, err := repos.LineRepo().FindLabor(ctx, id, laborID)
		if err != nil {
			return err
		}
		now := time.Now()
		labor.DeletedAt = &now
		labor.Touch()
		return repos.LineRepo().SaveLabor(ctx, labor)
	})
}

// editLines locks the work order, rejects edits on terminal statuses, runs
// change and recomputes the totals, all in one transaction.
func (s *Service) editLines(
	ctx context.Context,
	id uuid.UUID,
	operation string,
	change func(repos appshared.TransactionalRepositories) error,
) (*WorkOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "work_order", operation)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrWorkOrderID, id)

	var result *workorder.WorkOrder
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := wo.EnsureLinesEditable(); err != nil {
			return err
		}
		if err := change(repos); err != nil {
			return err
		}
		result, err = repos.WorkOrderRepo().RecalcTotals(ctx, id)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Debug("Work order lines changed",
		zap.String("work_order_id", id.String()),
		zap.String("operation", operation),
		zap.String("total", result.Total.StringFixed(2)),
	)
	resp := ToWorkOrderResponse(result)
	return &resp, nil
}
