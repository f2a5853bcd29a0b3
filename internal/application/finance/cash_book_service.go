package finance

import (
	"context"
	"time"

	appshared "github.com/garage/backend/internal/application/shared"
	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CashBookService manages manual cash book entries and ledger queries
type CashBookService struct {
	entries finance.CashBookRepository
	txScope appshared.TransactionScope
	logger  *zap.Logger
	opts    options
}

// NewCashBookService creates a CashBookService
func NewCashBookService(
	entries finance.CashBookRepository,
	txScope appshared.TransactionScope,
	logger *zap.Logger,
	opts ...Option,
) *CashBookService {
	return &CashBookService{
		entries: entries,
		txScope: txScope,
		logger:  logger,
		opts:    buildOptions(opts),
	}
}

// CreateEntry appends a manual entry. An entry naming a bank account moves its
// balance in the same transaction: IN credits it, OUT debits it.
func (s *CashBookService) CreateEntry(ctx context.Context, req CreateCashBookEntryRequest) (*finance.CashBookEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_book", "create_entry")
	defer span.End()

	occurredAt := s.opts.clock()
	if req.OccurredAt != nil {
		occurredAt = *req.OccurredAt
	}
	entry, err := finance.NewManualEntry(
		req.Description,
		req.Value,
		finance.Direction(req.Direction),
		finance.EntryCategory(req.Category),
		req.BankAccountID,
		occurredAt,
	)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		if entry.AffectsBalance() {
			if err := applyBalance(ctx, repos, *entry.BankAccountID, entry.SignedValue()); err != nil {
				return err
			}
		}
		return repos.CashBookRepo().Create(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.opts.metrics.CashBookEntry(ctx, string(entry.Direction), string(entry.Category))
	s.logger.Info("Cash book entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("direction", string(entry.Direction)),
		zap.String("category", string(entry.Category)),
		zap.String("amount", entry.Value.StringFixed(2)),
	)
	return entry, nil
}

// DeleteEntry soft-deletes a manual entry and undoes its balance effect
func (s *CashBookService) DeleteEntry(ctx context.Context, id uuid.UUID, reason string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "cash_book", "delete_entry")
	defer span.End()

	err := s.txScope.Execute(ctx, func(repos appshared.TransactionalRepositories) error {
		entry, err := repos.CashBookRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := entry.SoftDeleteManual(reason); err != nil {
			return err
		}
		if entry.AffectsBalance() {
			if err := applyBalance(ctx, repos, *entry.BankAccountID, entry.SignedValue().Neg()); err != nil {
				return err
			}
		}
		return repos.CashBookRepo().SoftDelete(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	s.logger.Info("Cash book entry deleted", zap.String("entry_id", id.String()), zap.String("reason", reason))
	return nil
}

// applyBalance moves a balance by a signed delta under the account row lock
func applyBalance(ctx context.Context, repos appshared.TransactionalRepositories, accountID uuid.UUID, delta decimal.Decimal) error {
	if delta.IsNegative() {
		return repos.BankAccountRepo().Decrement(ctx, accountID, delta.Neg())
	}
	return repos.BankAccountRepo().Increment(ctx, accountID, delta)
}

// List returns the active entries matching the filter
func (s *CashBookService) List(ctx context.Context, req ListCashBookRequest) (*shared.Paginated[finance.CashBookEntry], error) {
	filter := finance.CashBookFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
		From:          req.From,
		To:            req.To,
		BankAccountID: req.BankAccountID,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	if req.Category != "" {
		c := finance.EntryCategory(req.Category)
		filter.Category = &c
	}
	if req.Direction != "" {
		d := finance.Direction(req.Direction)
		filter.Direction = &d
	}

	rows, total, err := s.entries.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(rows, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Revenue totals recognized revenue in [from, to). A zero to means now.
func (s *CashBookService) Revenue(ctx context.Context, from, to time.Time) (*RevenueResponse, error) {
	if to.IsZero() {
		to = s.opts.clock()
	}
	if !from.Before(to) {
		return nil, shared.NewValidationError("revenue period start must be before its end")
	}
	total, err := s.entries.SumRevenue(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &RevenueResponse{From: from, To: to, Total: total}, nil
}
