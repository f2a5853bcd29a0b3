package finance

import (
	"github.com/garage/backend/internal/domain/workorder"
	"github.com/shopspring/decimal"
)

// ClosingSnapshot is a read-only view of a consolidated work order handed to
// document renderers. Renderers never write back.
type ClosingSnapshot struct {
	WorkOrder   workorder.WorkOrder
	Items       []workorder.Item
	Labors      []workorder.Labor
	Payments    []Payment
	Receivables []Receivable
	Closing     *FinancialClosing
}

// PaidTotal sums the gross value of the snapshot payments
func (s *ClosingSnapshot) PaidTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Payments {
		total = total.Add(p.GrossValue)
	}
	return total
}

// FeeTotal sums the operator fees of the snapshot receivables
func (s *ClosingSnapshot) FeeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, r := range s.Receivables {
		total = total.Add(r.FeeAmount)
	}
	return total
}
