package finance

import (
	"strings"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Operator is a card processor with fee and settlement-deadline tables
type Operator struct {
	shared.BaseEntity
	Name                 string          `json:"name"`
	DebitRate            decimal.Decimal `json:"debit_rate"`
	DebitLeadDays        int             `json:"debit_lead_days"`
	CreditSingleRate     decimal.Decimal `json:"credit_single_rate"`
	CreditSingleLeadDays int             `json:"credit_single_lead_days"`
	CreditMultiRate      decimal.Decimal `json:"credit_multi_rate"`
	CreditMultiLeadDays  int             `json:"credit_multi_lead_days"`
	DestinationAccountID uuid.UUID       `json:"destination_account_id"`
	Active               bool            `json:"active"`
}

// OperatorTerms is the fee table row applying to one payment
type OperatorTerms struct {
	Rate     decimal.Decimal
	LeadDays int
	// Staggered spaces installment due dates 30 days apart
	Staggered bool
}

// NewOperator validates and creates an operator
func NewOperator(name string, destination uuid.UUID) (*Operator, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("operator name cannot be empty")
	}
	if destination == uuid.Nil {
		return nil, shared.NewValidationError("operator destination account is required")
	}
	return &Operator{
		BaseEntity:           shared.NewBaseEntity(),
		Name:                 strings.TrimSpace(name),
		DestinationAccountID: destination,
		DebitRate:            decimal.Zero,
		CreditSingleRate:     decimal.Zero,
		CreditMultiRate:      decimal.Zero,
		Active:               true,
	}, nil
}

// Validate checks that rates are percentages and lead times are not negative
func (o *Operator) Validate() error {
	hundred := decimal.NewFromInt(100)
	for _, r := range []decimal.Decimal{o.DebitRate, o.CreditSingleRate, o.CreditMultiRate} {
		if r.IsNegative() || r.GreaterThan(hundred) {
			return shared.NewValidationError("operator rates must be between 0 and 100")
		}
	}
	if o.DebitLeadDays < 0 || o.CreditSingleLeadDays < 0 || o.CreditMultiLeadDays < 0 {
		return shared.NewValidationError("operator lead days cannot be negative")
	}
	return nil
}

// TermsFor selects the fee table row for a card payment
func (o *Operator) TermsFor(method PaymentMethod, installments int) OperatorTerms {
	switch {
	case method == PaymentMethodDebit:
		return OperatorTerms{Rate: o.DebitRate, LeadDays: o.DebitLeadDays}
	case installments <= 1:
		return OperatorTerms{Rate: o.CreditSingleRate, LeadDays: o.CreditSingleLeadDays}
	default:
		return OperatorTerms{Rate: o.CreditMultiRate, LeadDays: o.CreditMultiLeadDays, Staggered: true}
	}
}
