package finance

import (
	"context"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AccountService manages bank accounts and card operators
type AccountService struct {
	accounts  finance.BankAccountRepository
	operators finance.OperatorRepository
	logger    *zap.Logger
}

// NewAccountService creates an AccountService. operators is usually the cached repository.
func NewAccountService(accounts finance.BankAccountRepository, operators finance.OperatorRepository, logger *zap.Logger) *AccountService {
	return &AccountService{accounts: accounts, operators: operators, logger: logger}
}

// CreateBankAccount opens a bank account
func (s *AccountService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*finance.BankAccount, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create_bank_account")
	defer span.End()

	account, err := finance.NewBankAccount(req.Name, req.Bank, req.OpeningBalance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.accounts.Save(ctx, account); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Bank account created", zap.String("bank_account_id", account.ID.String()), zap.String("name", account.Name))
	return account, nil
}

// GetBankAccount returns an account with its current balance
func (s *AccountService) GetBankAccount(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	return s.accounts.FindByID(ctx, id)
}

// ListBankAccounts returns every account
func (s *AccountService) ListBankAccounts(ctx context.Context) ([]finance.BankAccount, error) {
	return s.accounts.FindAll(ctx)
}

// CreateOperator registers a card operator with its fee table
func (s *AccountService) CreateOperator(ctx context.Context, req OperatorRequest) (*finance.Operator, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "create_operator")
	defer span.End()

	op, err := finance.NewOperator(req.Name, req.DestinationAccountID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.saveOperator(ctx, op, req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Card operator created", zap.String("operator_id", op.ID.String()), zap.String("name", op.Name))
	return op, nil
}

// UpdateOperator replaces the fee table of an operator. Receivables already
// generated keep the terms they were built with.
func (s *AccountService) UpdateOperator(ctx context.Context, id uuid.UUID, req OperatorRequest) (*finance.Operator, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "account", "update_operator")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOperatorID, id)

	op, err := s.operators.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	fresh, err := finance.NewOperator(req.Name, req.DestinationAccountID)
	if err != nil {
		return nil, err
	}
	op.Name = fresh.Name
	op.DestinationAccountID = fresh.DestinationAccountID
	op.Touch()
	if err := s.saveOperator(ctx, op, req); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.logger.Info("Card operator updated", zap.String("operator_id", op.ID.String()))
	return op, nil
}

func (s *AccountService) saveOperator(ctx context.Context, op *finance.Operator, req OperatorRequest) error {
	op.DebitRate = req.DebitRate
	op.DebitLeadDays = req.DebitLeadDays
	op.CreditSingleRate = req.CreditSingleRate
	op.CreditSingleLeadDays = req.CreditSingleLeadDays
	op.CreditMultiRate = req.CreditMultiRate
	op.CreditMultiLeadDays = req.CreditMultiLeadDays
	if req.Active != nil {
		op.Active = *req.Active
	}
	if err := op.Validate(); err != nil {
		return err
	}
	if _, err := s.accounts.FindByID(ctx, op.DestinationAccountID); err != nil {
		return err
	}
	return s.operators.Save(ctx, op)
}

// GetOperator returns an operator
func (s *AccountService) GetOperator(ctx context.Context, id uuid.UUID) (*finance.Operator, error) {
	return s.operators.FindByID(ctx, id)
}

// ListOperators returns every operator
func (s *AccountService) ListOperators(ctx context.Context) ([]finance.Operator, error) {
	return s.operators.FindAll(ctx)
}
