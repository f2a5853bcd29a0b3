package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceivableService settles card receivables against the operator's destination account
type ReceivableService struct {
	receivables finance.ReceivableRepository
	txScope     appshared.TransactionScope
	logger      *zap.Logger
	opts        options
}

// NewReceivableService creates a ReceivableService
func NewReceivableService(
	receivables finance.ReceivableRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
	opts ...Option,
) *ReceivableService {
	return &ReceivableService{
		receivables: receivables,
		txScope:     txScope,
		logger:      logger,
		opts:        buildOptions(opts),
	}
}

// Confirm marks a PENDING receivable as RECEIVED, credits the destination
// bank account with the net amount and writes the reconciliation entry.
func (s *ReceivableService) Confirm(ctx context.Context, id uuid.UUID, confirmedBy string) (*finance.Receivable, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "confirm")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrReceivableID, id)

	var result *finance.Receivable
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		r, err := repos.ReceivableRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.confirm(ctx, repos, r, confirmedBy); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.opts.metrics.ReceivableSettled(ctx, "confirmed")
	s.logger.Info("Receivable confirmed",
		zap.String("receivable_id", id.String()),
		zap.String("amount", result.NetAmount.StringFixed(2)),
		zap.String("confirmed_by", result.ConfirmedBy),
	)
	return result, nil
}

// confirm applies a confirmation to a locked receivable
func (s *ReceivableService) confirm(ctx context.Context, repos appshared.TransactionalRepositories, r *finance.Receivable, confirmedBy string) error {
	now := s.opts.clock()
	if err := r.Confirm(confirmedBy, now); err != nil {
		return err
	}
	op, err := repos.OperatorRepo().FindByID(ctx, r.OperatorID)
	if err != nil {
		return err
	}
	if err := repos.BankAccountRepo().Increment(ctx, op.DestinationAccountID, r.NetAmount); err != nil {
		return err
	}
	if err := repos.CashBookRepo().Create(ctx, finance.NewReconciliationEntry(r, op.DestinationAccountID, now)); err != nil {
		return fmt.Errorf("failed to write reconciliation entry: %w", err)
	}
	return repos.ReceivableRepo().Save(ctx, r)
}

// Reverse undoes a confirmation: the credited accounts are debited back, the
// reconciliation entries linked to the receivable are removed and it returns to PENDING.
func (s *ReceivableService) Reverse(ctx context.Context, id uuid.UUID) (*finance.Receivable, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "reverse")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrReceivableID, id)

	var (
		result  *finance.Receivable
		removed int64
	)
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		r, err := repos.ReceivableRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Reverse(); err != nil {
			return err
		}

		entries, _, err := repos.CashBookRepo().FindAll(ctx, finance.CashBookFilter{
			Filter:       shared.Filter{Page: 1, PageSize: 200},
			ReceivableID: &r.ID,
		})
		if err != nil {
			return err
		}
		credited := false
		for _, e := range entries {
			if e.BankAccountID == nil {
				continue
			}
			if err := repos.BankAccountRepo().Decrement(ctx, *e.BankAccountID, e.Value); err != nil {
				return err
			}
			credited = true
		}
		if !credited {
			// Confirmation left no entry behind; debit the operator's account directly.
			op, err := repos.OperatorRepo().FindByID(ctx, r.OperatorID)
			if err != nil {
				return err
			}
			if err := repos.BankAccountRepo().Decrement(ctx, op.DestinationAccountID, r.NetAmount); err != nil {
				return err
			}
		}

		if removed, err = repos.CashBookRepo().DeleteByReceivable(ctx, r.ID); err != nil {
			return err
		}
		if err := repos.ReceivableRepo().Save(ctx, r); err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.opts.metrics.ReceivableSettled(ctx, "reversed")
	s.logger.Info("Receivable reversed",
		zap.String("receivable_id", id.String()),
		zap.String("amount", result.NetAmount.StringFixed(2)),
		zap.Int64("entries_removed", removed),
	)
	return result, nil
}

// ConfirmBatch confirms several receivables in one transaction. Ids that are
// unknown, already received or rejected by a business rule are skipped; any
// other failure aborts the whole batch.
func (s *ReceivableService) ConfirmBatch(ctx context.Context, ids []uuid.UUID, confirmedBy string) (*BatchConfirmResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "confirm_batch")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrCount, len(ids))

	var result *BatchConfirmResult
	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		result = &BatchConfirmResult{Confirmed: []uuid.UUID{}, Skipped: []SkippedReceivable{}}
		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true

			r, err := repos.ReceivableRepo().FindByIDForUpdate(ctx, id)
			if err == nil && r.IsReceived() {
				err = shared.NewConflictError("receivable is already received")
			}
			if err == nil {
				err = s.confirm(ctx, repos, r, confirmedBy)
			}
			if err != nil {
				var domainErr *shared.DomainError
				if !errors.As(err, &domainErr) {
					return err
				}
				result.Skipped = append(result.Skipped, SkippedReceivable{ID: id, Reason: domainErr.Message})
				continue
			}
			result.Confirmed = append(result.Confirmed, id)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	for range result.Confirmed {
		s.opts.metrics.ReceivableSettled(ctx, "confirmed")
	}
	s.logger.Info("Receivable batch confirmed",
		zap.Int("confirmed", len(result.Confirmed)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

// Summary aggregates pending amounts by due window and what was received this month.
// Due windows are inclusive calendar days starting today: "within 30 days" covers
// today through today+30. Pending amounts due before today are reported as overdue.
func (s *ReceivableService) Summary(ctx context.Context) (*finance.ReceivableSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "receivable", "summary")
	defer span.End()

	today := s.opts.today()
	out := &finance.ReceivableSummary{}
	var err error
	if out.PendingOverdue, out.PendingOverdueN, err = s.receivables.SumPendingDue(ctx, time.Time{}, today); err != nil {
		return nil, err
	}
	if out.PendingDueToday, _, err = s.receivables.SumPendingDue(ctx, today, dueBound(today, 0)); err != nil {
		return nil, err
	}
	if out.PendingDueIn7Days, _, err = s.receivables.SumPendingDue(ctx, today, dueBound(today, 7)); err != nil {
		return nil, err
	}
	if out.PendingDueIn30Days, _, err = s.receivables.SumPendingDue(ctx, today, dueBound(today, 30)); err != nil {
		return nil, err
	}
	if _, out.PendingCount, err = s.receivables.SumPendingDue(ctx, time.Time{}, maxDueDate); err != nil {
		return nil, err
	}
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	if out.ReceivedCurrentMonth, out.ReceivedCurrentMonthN, err = s.receivables.SumReceived(ctx, monthStart, monthStart.AddDate(0, 1, 0)); err != nil {
		return nil, err
	}
	return out, nil
}

var maxDueDate = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// dueBound is the exclusive upper bound of a window that ends on today+days inclusive
func dueBound(today time.Time, days int) time.Time {
	return today.AddDate(0, 0, days+1)
}

// List returns a page of receivables
func (s *ReceivableService) List(ctx context.Context, req ListReceivablesRequest) (*shared.Paginated[finance.Receivable], error) {
	filter := receivableFilter(req)
	rows, total, err := s.receivables.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(rows, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListAll walks every page of the filtered receivables, for exports
func (s *ReceivableService) ListAll(ctx context.Context, req ListReceivablesRequest) ([]finance.Receivable, error) {
	filter := receivableFilter(req)
	filter.Page, filter.PageSize = 1, 200
	var out []finance.Receivable
	for {
		rows, total, err := s.receivables.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) == 0 || int64(len(out)) >= total {
			return out, nil
		}
		filter.Page++
	}
}

func receivableFilter(req ListReceivablesRequest) finance.ReceivableFilter {
	filter := finance.ReceivableFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		WorkOrderID: req.WorkOrderID,
		OperatorID:  req.OperatorID,
		DueFrom:     req.DueFrom,
		DueTo:       req.DueTo,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if req.Status != "" {
		status := finance.ReceivableStatus(req.Status)
		filter.Status = &status
	}
	return filter
}
