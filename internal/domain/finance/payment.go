package finance

import (
	"fmt"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxInstallments is the largest installment count a card payment may be split into
const MaxInstallments = 24

// PaymentMethod represents how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodPix    PaymentMethod = "PIX"
	PaymentMethodDebit  PaymentMethod = "DEBIT"
	PaymentMethodCredit PaymentMethod = "CREDIT"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodDebit, PaymentMethodCredit:
		return true
	}
	return false
}

// IsCard returns true for methods settled by a card operator
func (m PaymentMethod) IsCard() bool {
	return m == PaymentMethodDebit || m == PaymentMethodCredit
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment is a customer payment recorded against a work order
type Payment struct {
	shared.BaseEntity
	WorkOrderID     uuid.UUID       `json:"work_order_id"`
	Method          PaymentMethod   `json:"method"`
	GrossValue      decimal.Decimal `json:"gross_value"`
	Installments    int             `json:"installments"`
	OperatorID      *uuid.UUID      `json:"operator_id,omitempty"`
	BankAccountID   *uuid.UUID      `json:"bank_account_id,omitempty"`
	CashBookEntryID *uuid.UUID      `json:"cash_book_entry_id,omitempty"`
	DeletedAt       *time.Time      `json:"deleted_at,omitempty"`
}

// NewPayment validates intake input and builds a Payment.
// Operator and bank account are only kept for the methods they apply to.
func NewPayment(
	workOrderID uuid.UUID,
	method PaymentMethod,
	grossValue decimal.Decimal,
	installments int,
	operatorID *uuid.UUID,
	bankAccountID *uuid.UUID,
) (*Payment, error) {
	if workOrderID == uuid.Nil {
		return nil, shared.NewValidationError("work order ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid payment method %q", method))
	}
	if !grossValue.IsPositive() {
		return nil, shared.NewValidationError("payment value must be positive")
	}
	if !grossValue.Round(2).Equal(grossValue) {
		return nil, shared.NewValidationError("payment value cannot have more than two decimal places")
	}

	p := &Payment{
		BaseEntity:   shared.NewBaseEntity(),
		WorkOrderID:  workOrderID,
		Method:       method,
		GrossValue:   grossValue,
		Installments: 1,
	}

	if method.IsCard() {
		if installments < 1 {
			installments = 1
		}
		if installments > MaxInstallments {
			return nil, shared.NewValidationError(fmt.Sprintf("installments cannot exceed %d", MaxInstallments))
		}
		if method == PaymentMethodDebit && installments != 1 {
			return nil, shared.NewValidationError("debit payments cannot be split into installments")
		}
		if grossValue.LessThan(decimal.New(int64(installments), -2)) {
			return nil, shared.NewValidationError("each installment must be at least 0.01")
		}
		p.Installments = installments
		p.OperatorID = operatorID
	} else {
		p.BankAccountID = bankAccountID
	}

	return p, nil
}

// IsLinked reports whether consolidation already produced a cash book entry for the payment
func (p *Payment) IsLinked() bool {
	return p.CashBookEntryID != nil
}

// LinkCashBookEntry sets the entry link. The link is write-once.
func (p *Payment) LinkCashBookEntry(entryID uuid.UUID) error {
	if p.IsLinked() {
		return shared.NewConflictError("payment is already linked to a cash book entry")
	}
	p.CashBookEntryID = &entryID
	p.Touch()
	return nil
}

// ValidateForConsolidation checks that the payment carries the reference its method needs
func (p *Payment) ValidateForConsolidation() error {
	switch {
	case p.Method.IsCard() && p.OperatorID == nil:
		return shared.NewValidationError(fmt.Sprintf("payment %s (%s) has no card operator", p.ID, p.Method))
	case !p.Method.IsCard() && p.BankAccountID == nil:
		return shared.NewValidationError(fmt.Sprintf("payment %s (%s) has no bank account", p.ID, p.Method))
	}
	return nil
}

// MarkDeleted soft-deletes a payment that has not been consolidated yet
func (p *Payment) MarkDeleted() error {
	if p.IsLinked() {
		return shared.NewImmutabilityError("consolidated payment cannot be deleted")
	}
	now := time.Now()
	p.DeletedAt = &now
	p.Touch()
	return nil
}
