package finance

import (
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RegisterPaymentRequest records a customer payment against a work order
type RegisterPaymentRequest struct {
	Method        string          `json:"method" binding:"required,oneof=CASH PIX DEBIT CREDIT"`
	GrossValue    decimal.Decimal `json:"gross_value"`
	Installments  int             `json:"installments" binding:"omitempty,min=1,max=24"`
	OperatorID    *uuid.UUID      `json:"operator_id"`
	BankAccountID *uuid.UUID      `json:"bank_account_id"`
}

// PaymentResult is a registered payment with the receivables it produced
type PaymentResult struct {
	Payment     finance.Payment      `json:"payment"`
	Receivables []finance.Receivable `json:"receivables"`
	// Replayed is set when an Idempotency-Key matched an earlier request
	Replayed bool `json:"replayed"`
}

// ListReceivablesRequest filters the receivables ledger
type ListReceivablesRequest struct {
	Status      string     `form:"status" binding:"omitempty,oneof=PENDING RECEIVED"`
	WorkOrderID *uuid.UUID `form:"work_order_id"`
	OperatorID  *uuid.UUID `form:"operator_id"`
	DueFrom     *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo       *time.Time `form:"due_to" time_format:"2006-01-02"`
	Page        int        `form:"page" binding:"omitempty,min=1"`
	PageSize    int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ConfirmBatchRequest confirms several receivables at once
type ConfirmBatchRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required,min=1,max=500"`
}

// SkippedReceivable explains why a batch left a receivable untouched
type SkippedReceivable struct {
	ID     uuid.UUID `json:"id"`
	Reason string    `json:"reason"`
}

// BatchConfirmResult lists what a batch confirmation did
type BatchConfirmResult struct {
	Confirmed []uuid.UUID         `json:"confirmed"`
	Skipped   []SkippedReceivable `json:"skipped"`
}

// CreateCashBookEntryRequest creates a manual cash book entry
type CreateCashBookEntryRequest struct {
	Description   string          `json:"description" binding:"required,min=1,max=500"`
	Value         decimal.Decimal `json:"value"`
	Direction     string          `json:"direction" binding:"required,oneof=IN OUT"`
	Category      string          `json:"category" binding:"required,oneof=REVENUE EXPENSE ADJUSTMENT"`
	BankAccountID *uuid.UUID      `json:"bank_account_id"`
	OccurredAt    *time.Time      `json:"occurred_at"`
}

// DeleteCashBookEntryRequest carries the mandatory delete reason
type DeleteCashBookEntryRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListCashBookRequest filters the cash book ledger
type ListCashBookRequest struct {
	From          *time.Time `form:"from" time_format:"2006-01-02"`
	To            *time.Time `form:"to" time_format:"2006-01-02"`
	BankAccountID *uuid.UUID `form:"bank_account_id"`
	Category      string     `form:"category" binding:"omitempty,oneof=REVENUE EXPENSE RECONCILIATION ADJUSTMENT"`
	Direction     string     `form:"direction" binding:"omitempty,oneof=IN OUT"`
	Page          int        `form:"page" binding:"omitempty,min=1"`
	PageSize      int        `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy       string     `form:"order_by"`
	OrderDir      string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RevenueResponse is the recognized revenue of a period
type RevenueResponse struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Total decimal.Decimal `json:"total"`
}

// CreateBankAccountRequest opens a bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required,min=1,max=100"`
	Bank           string          `json:"bank" binding:"max=100"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// OperatorRequest creates or replaces the fee table of a card operator
type OperatorRequest struct {
	Name                 string          `json:"name" binding:"required,min=1,max=100"`
	DebitRate            decimal.Decimal `json:"debit_rate"`
	DebitLeadDays        int             `json:"debit_lead_days" binding:"min=0"`
	CreditSingleRate     decimal.Decimal `json:"credit_single_rate"`
	CreditSingleLeadDays int             `json:"credit_single_lead_days" binding:"min=0"`
	CreditMultiRate      decimal.Decimal `json:"credit_multi_rate"`
	CreditMultiLeadDays  int             `json:"credit_multi_lead_days" binding:"min=0"`
	DestinationAccountID uuid.UUID       `json:"destination_account_id" binding:"required"`
	Active               *bool           `json:"active"`
}
