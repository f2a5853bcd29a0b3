package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells whether money came in or went out
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// EntryCategory classifies a cash book entry
type EntryCategory string

const (
	CategoryRevenue        EntryCategory = "REVENUE"
	CategoryExpense        EntryCategory = "EXPENSE"
	CategoryReconciliation EntryCategory = "RECONCILIATION"
	CategoryAdjustment     EntryCategory = "ADJUSTMENT"
)

// IsValid checks if the category is valid
func (c EntryCategory) IsValid() bool {
	switch c {
	case CategoryRevenue, CategoryExpense, CategoryReconciliation, CategoryAdjustment:
		return true
	}
	return false
}

// EntryOrigin tells whether an entry was typed by a user or produced by the system
type EntryOrigin string

const (
	OriginManual    EntryOrigin = "MANUAL"
	OriginAutomatic EntryOrigin = "AUTOMATIC"
)

// CashBookEntry is one monetary movement in the cash book.
// Entries are immutable once created, except for soft delete.
type CashBookEntry struct {
	shared.BaseEntity
	shared.SoftDelete
	Description   string          `json:"description"`
	Value         decimal.Decimal `json:"value"`
	Direction     Direction       `json:"direction"`
	Category      EntryCategory   `json:"category"`
	Origin        EntryOrigin     `json:"origin"`
	BankAccountID *uuid.UUID      `json:"bank_account_id,omitempty"` // nil: revenue only, no balance effect
	ReceivableID  *uuid.UUID      `json:"receivable_id,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewRevenueEntry creates the automatic IN/REVENUE entry for a consolidated payment.
// It carries no bank account: recognizing revenue does not move a balance.
func NewRevenueEntry(p *Payment, workOrderNumber string) *CashBookEntry {
	return &CashBookEntry{
		BaseEntity:  shared.NewBaseEntity(),
		Description: fmt.Sprintf("Work order %s - %s payment", workOrderNumber, p.Method),
		Value:       p.GrossValue,
		Direction:   DirectionIn,
		Category:    CategoryRevenue,
		Origin:      OriginAutomatic,
		OccurredAt:  time.Now(),
	}
}

// NewReconciliationEntry creates the IN/RECONCILIATION entry for a confirmed settlement
func NewReconciliationEntry(r *Receivable, bankAccountID uuid.UUID, at time.Time) *CashBookEntry {
	id := r.ID
	return &CashBookEntry{
		BaseEntity: shared.NewBaseEntity(),
		Description: fmt.Sprintf("Card settlement %d/%d for work order %s",
			r.Installment, r.TotalInstallments, r.WorkOrderID),
		Value:         r.NetAmount,
		Direction:     DirectionIn,
		Category:      CategoryReconciliation,
		Origin:        OriginAutomatic,
		BankAccountID: &bankAccountID,
		ReceivableID:  &id,
		OccurredAt:    at,
	}
}

// NewManualEntry creates a user-typed entry
func NewManualEntry(
	description string,
	value decimal.Decimal,
	direction Direction,
	category EntryCategory,
	bankAccountID *uuid.UUID,
	occurredAt time.Time,
) (*CashBookEntry, error) {
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("entry description cannot be empty")
	}
	if !value.IsPositive() {
		return nil, shared.NewValidationError("entry value must be positive")
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid direction %q", direction))
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid category %q", category))
	}
	if category == CategoryReconciliation {
		return nil, shared.NewValidationError("reconciliation entries are created by settlement confirmation only")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	return &CashBookEntry{
		BaseEntity:    shared.NewBaseEntity(),
		Description:   description,
		Value:         value,
		Direction:     direction,
		Category:      category,
		Origin:        OriginManual,
		BankAccountID: bankAccountID,
		OccurredAt:    occurredAt,
	}, nil
}

// SignedValue returns the value with the sign of its direction
func (e *CashBookEntry) SignedValue() decimal.Decimal {
	if e.Direction == DirectionOut {
		return e.Value.Neg()
	}
	return e.Value
}

// AffectsBalance reports whether the entry moved a bank account balance
func (e *CashBookEntry) AffectsBalance() bool {
	return e.BankAccountID != nil
}

// SoftDeleteManual soft-deletes a manual entry. Automatic entries are owned by
// consolidation and settlement reversal.
func (e *CashBookEntry) SoftDeleteManual(reason string) error {
	if e.IsDeleted() {
		return shared.NewConflictError("cash book entry is already deleted")
	}
	if e.Origin != OriginManual {
		return shared.NewValidationError("automatic cash book entries cannot be deleted by hand")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewValidationError("delete reason is required")
	}
	e.MarkDeleted(reason)
	return nil
}
