package finance

import (
	"strings"
	"time"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/garage/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceivableStatus represents the settlement status of a card installment
type ReceivableStatus string

const (
	ReceivableStatusPending  ReceivableStatus = "PENDING"  // Awaiting operator settlement
	ReceivableStatusReceived ReceivableStatus = "RECEIVED" // Settlement confirmed, balance credited
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	return s == ReceivableStatusPending || s == ReceivableStatusReceived
}

// String returns the string representation of ReceivableStatus
func (s ReceivableStatus) String() string {
	return string(s)
}

// Receivable is one deferred card-processor settlement installment
type Receivable struct {
	shared.BaseEntity
	WorkOrderID       uuid.UUID        `json:"work_order_id"`
	PaymentID         uuid.UUID        `json:"payment_id"`
	OperatorID        uuid.UUID        `json:"operator_id"`
	Installment       int              `json:"installment"`
	TotalInstallments int              `json:"total_installments"`
	GrossAmount       decimal.Decimal  `json:"gross_amount"`
	FeeAmount         decimal.Decimal  `json:"fee_amount"`
	NetAmount         decimal.Decimal  `json:"net_amount"`
	ExpectedDate      time.Time        `json:"expected_date"`
	Status            ReceivableStatus `json:"status"`
	ConfirmedBy       string           `json:"confirmed_by,omitempty"`
	ConfirmedAt       *time.Time       `json:"confirmed_at,omitempty"`
}

// IsReceived reports whether the settlement was confirmed
func (r *Receivable) IsReceived() bool {
	return r.Status == ReceivableStatusReceived
}

// Confirm marks the installment as settled
func (r *Receivable) Confirm(confirmedBy string, at time.Time) error {
	if r.IsReceived() {
		return shared.NewConflictError("receivable is already received")
	}
	confirmedBy = strings.TrimSpace(confirmedBy)
	if confirmedBy == "" {
		return shared.NewValidationError("confirmed by is required")
	}
	r.Status = ReceivableStatusReceived
	r.ConfirmedBy = confirmedBy
	r.ConfirmedAt = &at
	r.UpdatedAt = at
	return nil
}

// Reverse undoes a confirmation and clears its metadata
func (r *Receivable) Reverse() error {
	if !r.IsReceived() {
		return shared.NewConflictError("only received receivables can be reversed")
	}
	r.Status = ReceivableStatusPending
	r.ConfirmedBy = ""
	r.ConfirmedAt = nil
	r.Touch()
	return nil
}

// BuildReceivables splits a card payment into PENDING installments using the
// operator's fee table. Gross amounts are split in whole cents with the trailing
// installments absorbing the remainder, so they always sum to the payment value
// and none is below one cent.
func BuildReceivables(p *Payment, op *Operator, today time.Time) ([]Receivable, error) {
	if !p.Method.IsCard() {
		return nil, shared.NewValidationError("receivables apply to card payments only")
	}
	n := p.Installments
	if n < 1 {
		n = 1
	}
	terms := op.TermsFor(p.Method, n)
	base := StartOfDay(today).AddDate(0, 0, terms.LeadDays)

	parts, err := valueobject.NewMoney(p.GrossValue).Allocate(n)
	if err != nil {
		return nil, shared.NewValidationError(err.Error())
	}

	out := make([]Receivable, 0, n)
	for i, gross := range parts {
		fee := gross.Percentage(terms.Rate)
		due := base
		if terms.Staggered {
			due = base.AddDate(0, 0, 30*i)
		}
		out = append(out, Receivable{
			BaseEntity:        shared.NewBaseEntity(),
			WorkOrderID:       p.WorkOrderID,
			PaymentID:         p.ID,
			OperatorID:        op.ID,
			Installment:       i + 1,
			TotalInstallments: n,
			GrossAmount:       gross.Amount(),
			FeeAmount:         fee.Amount(),
			NetAmount:         gross.Subtract(fee).Amount(),
			ExpectedDate:      due,
			Status:            ReceivableStatusPending,
		})
	}
	return out, nil
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ReceivableSummary aggregates the receivables ledger for dashboards
type ReceivableSummary struct {
	PendingOverdue        decimal.Decimal `json:"pending_overdue"`
	PendingOverdueN       int64           `json:"pending_overdue_count"`
	PendingDueToday       decimal.Decimal `json:"pending_due_today"`
	PendingDueIn7Days     decimal.Decimal `json:"pending_due_in_7_days"`
	PendingDueIn30Days    decimal.Decimal `json:"pending_due_in_30_days"`
	ReceivedCurrentMonth  decimal.Decimal `json:"received_current_month"`
	PendingCount          int64           `json:"pending_count"`
	ReceivedCurrentMonthN int64           `json:"received_current_month_count"`
}
