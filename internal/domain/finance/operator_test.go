package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var zeroTime time.Time

func TestOperator_TermsFor(t *testing.T) {
	op := createTestOperator(t)

	debit := op.TermsFor(PaymentMethodDebit, 1)
	assert.True(t, debit.Rate.Equal(op.DebitRate))
	assert.Equal(t, op.DebitLeadDays, debit.LeadDays)
	assert.False(t, debit.Staggered)

	single := op.TermsFor(PaymentMethodCredit, 1)
	assert.True(t, single.Rate.Equal(op.CreditSingleRate))
	assert.False(t, single.Staggered)

	multi := op.TermsFor(PaymentMethodCredit, 6)
	assert.True(t, multi.Rate.Equal(op.CreditMultiRate))
	assert.True(t, multi.Staggered)
}

func TestOperator_Validate(t *testing.T) {
	_, err := NewOperator("", uuid.New())
	assert.Error(t, err)
	_, err = NewOperator("Stone", uuid.Nil)
	assert.Error(t, err)

	op := createTestOperator(t)
	op.CreditMultiRate = decimal.NewFromInt(101)
	assert.Error(t, op.Validate())

	op = createTestOperator(t)
	op.DebitLeadDays = -1
	assert.Error(t, op.Validate())
}

func TestFinancialClosing(t *testing.T) {
	c, err := NewFinancialClosing(uuid.New(), decimal.NewFromInt(140), decimal.NewFromInt(340), "ana")
	assert.NoError(t, err)
	assert.True(t, c.GrossMargin().Equal(decimal.NewFromInt(200)))

	_, err = NewFinancialClosing(uuid.New(), decimal.NewFromInt(-1), decimal.Zero, "")
	assert.Error(t, err)
}
