package finance

import (
	"strings"

	"github.com/garage/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BankAccount holds a running balance moved only by confirmed settlements and
// manual entries that name the account
type BankAccount struct {
	shared.BaseEntity
	Name    string          `json:"name"`
	Bank    string          `json:"bank"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// NewBankAccount creates an active account with an opening balance
func NewBankAccount(name, bank string, openingBalance decimal.Decimal) (*BankAccount, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("bank account name cannot be empty")
	}
	return &BankAccount{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Bank:       strings.TrimSpace(bank),
		Balance:    openingBalance,
		Active:     true,
	}, nil
}
