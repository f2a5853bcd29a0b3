package finance

import (
	"context"
	"time"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ClosingObserver is told about a financial closing after its transaction committed
type ClosingObserver interface {
	ClosingRecorded(ctx context.Context, closing *finance.FinancialClosing)
}

// ConsolidationService turns the payments of a READY_TO_CLOSE work order into
// cash book revenue and the terminal financial closing.
type ConsolidationService struct {
	closings  finance.ClosingRepository
	txScope   appshared.TransactionScope
	observers []ClosingObserver
	logger    *zap.Logger
	opts      options
}

// NewConsolidationService creates a ConsolidationService
func NewConsolidationService(
	closings finance.ClosingRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
	opts ...Option,
) *ConsolidationService {
	return &ConsolidationService{
		closings: closings,
		txScope:  txScope,
		logger:   logger,
		opts:     buildOptions(opts),
	}
}

// AddObserver registers a post-commit observer
func (s *ConsolidationService) AddObserver(o ClosingObserver) {
	s.observers = append(s.observers, o)
}

// Consolidate closes a work order financially. Everything happens in one
// transaction holding the work order row lock: payments already linked to an
// entry are skipped, the others get an IN/REVENUE entry, then the closing is
// recorded and the work order becomes CLOSED. Card receivables are untouched;
// intake created them.
func (s *ConsolidationService) Consolidate(ctx context.Context, workOrderID uuid.UUID, closedBy string) (*finance.FinancialClosing, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "consolidation", "consolidate")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrWorkOrderID, workOrderID)

	start := time.Now()
	var (
		closing *finance.FinancialClosing
		created int
		skipped int
		err     error
	)
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("consolidation", "consolidate"), func(c context.Context) {
		err = s.txScope.Execute(c, func(repos appshared.TransactionalRepositories) error {
			wo, err := repos.WorkOrderRepo().FindByIDForUpdate(c, workOrderID)
			if err != nil {
				return err
			}
			if !wo.IsReadyToClose() {
				return shared.NewValidationError("work order is not ready for financial closing")
			}

			payments, err := repos.PaymentRepo().FindActiveByWorkOrder(c, workOrderID)
			if err != nil {
				return err
			}
			for i := range payments {
				if err := payments[i].ValidateForConsolidation(); err != nil {
					return err
				}
			}

			revenue := decimal.Zero
			for i := range payments {
				p := &payments[i]
				revenue = revenue.Add(p.GrossValue)
				if p.IsLinked() {
					skipped++
					continue
				}
				entry := finance.NewRevenueEntry(p, wo.Number)
				if err := repos.CashBookRepo().Create(c, entry); err != nil {
					return err
				}
				if err := p.LinkCashBookEntry(entry.ID); err != nil {
					return err
				}
				if err := repos.PaymentRepo().Save(c, p); err != nil {
					return err
				}
				created++
			}

			partsCost, err := repos.LineRepo().PartsCost(c, workOrderID)
			if err != nil {
				return err
			}
			closing, err = finance.NewFinancialClosing(workOrderID, partsCost, revenue, closedBy)
			if err != nil {
				return err
			}
			if err := repos.ClosingRepo().Create(c, closing); err != nil {
				return err
			}

			closed := workorder.StatusClosed
			if _, err := wo.ChangeStatus(&closed); err != nil {
				return err
			}
			return repos.WorkOrderRepo().Save(c, wo)
		})
	})
	elapsed := time.Since(start)
	if err != nil {
		telemetry.RecordError(span, err)
		s.opts.metrics.Consolidated(ctx, "error", elapsed)
		s.logger.Warn("Consolidation failed",
			zap.String("work_order_id", workOrderID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrCount, created)
	s.opts.metrics.Consolidated(ctx, "closed", elapsed)
	s.logger.Info("Work order consolidated",
		zap.String("work_order_id", workOrderID.String()),
		zap.Int("entries_created", created),
		zap.Int("payments_skipped", skipped),
		zap.String("revenue", closing.TotalRevenue.StringFixed(2)),
		zap.Duration("elapsed", elapsed),
	)

	for _, o := range s.observers {
		o.ClosingRecorded(ctx, closing)
	}
	return closing, nil
}

// GetClosing returns the financial closing of a work order
func (s *ConsolidationService) GetClosing(ctx context.Context, workOrderID uuid.UUID) (*finance.FinancialClosing, error) {
	return s.closings.FindByWorkOrder(ctx, workOrderID)
}

// Snapshot assembles the read-only view document renderers consume
func (s *ConsolidationService) Snapshot(ctx context.Context, workOrderID uuid.UUID) (*finance.ClosingSnapshot, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "consolidation", "snapshot")
	defer span.End()

	snap := &finance.ClosingSnapshot{}
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		wo, err := repos.WorkOrderRepo().FindByID(ctx, workOrderID)
		if err != nil {
			return err
		}
		snap.WorkOrder = *wo
		if snap.Closing, err = repos.ClosingRepo().FindByWorkOrder(ctx, workOrderID); err != nil {
			return err
		}
		if snap.Items, err = repos.LineRepo().ListItems(ctx, workOrderID); err != nil {
			return err
		}
		if snap.Labors, err = repos.LineRepo().ListLabors(ctx, workOrderID); err != nil {
			return err
		}
		if snap.Payments, err = repos.PaymentRepo().FindActiveByWorkOrder(ctx, workOrderID); err != nil {
			return err
		}
		snap.Receivables, _, err = repos.ReceivableRepo().FindAll(ctx, finance.ReceivableFilter{
			Filter:      shared.Filter{Page: 1, PageSize: 200},
			WorkOrderID: &workOrderID,
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return snap, nil
}
