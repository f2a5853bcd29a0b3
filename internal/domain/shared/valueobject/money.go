package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// CentPlaces is the number of decimal places money is settled in
const CentPlaces int32 = 2

// Currency represents a currency code (ISO 4217)
type Currency string

// BRL is the only currency the shop settles in
const BRL Currency = "BRL"

var hundred = decimal.NewFromInt(100)

// Money is a value object representing monetary amounts
// It is immutable - all operations return new Money instances
type Money struct {
	amount decimal.Decimal
}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d}, nil
}

// Zero returns a zero-value Money
func Zero() Money {
	return Money{amount: decimal.Zero}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return BRL
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive returns true if the amount is positive
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// Add returns a new Money with the sum of both amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Subtract returns a new Money with the difference
func (m Money) Subtract(other Money) Money {
	return Money{amount: m.amount.Sub(other.amount)}
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor)}
}

// Round returns a new Money rounded half away from zero to cents
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(CentPlaces)}
}

// Percentage returns rate percent of this Money, rounded to cents
func (m Money) Percentage(rate decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(rate).Div(hundred).Round(CentPlaces)}
}

// Equals returns true if both Money values hold the same amount
func (m Money) Equals(other Money) bool {
	return m.amount.Equal(other.amount)
}

// Allocate divides money into n parts in whole cents. Every part gets the
// floor share and the leftover cents go one each to the trailing parts, so the
// last part absorbs the remainder and no part is ever negative.
func (m Money) Allocate(parts int) ([]Money, error) {
	if parts <= 0 {
		return nil, errors.New("parts must be positive")
	}
	cents := m.amount.Shift(CentPlaces)
	if cents.IsNegative() {
		return nil, errors.New("cannot allocate a negative amount")
	}
	if !cents.Equal(cents.Truncate(0)) {
		return nil, errors.New("amount must be in whole cents")
	}

	share, rest := cents.QuoRem(decimal.NewFromInt(int64(parts)), 0)
	extra := int(rest.IntPart())
	one := decimal.NewFromInt(1)

	result := make([]Money, parts)
	for i := range result {
		c := share
		if i >= parts-extra {
			c = c.Add(one)
		}
		result[i] = Money{amount: c.Shift(-CentPlaces)}
	}
	return result, nil
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(CentPlaces), BRL)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.amount.StringFixed(CentPlaces))
}

// Value implements driver.Valuer for database storage
func (m Money) Value() (driver.Value, error) {
	return m.amount.String(), nil
}

// Scan implements sql.Scanner for database retrieval
func (m *Money) Scan(value any) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return fmt.Errorf("cannot scan %T into Money: %w", value, err)
	}
	m.amount = d
	return nil
}
