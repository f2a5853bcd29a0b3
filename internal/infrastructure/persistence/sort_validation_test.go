package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"asc", "ASC"},
		{" ASC ", "ASC"},
		{"desc", "DESC"},
		{"", "DESC"},
		{"asc; DROP TABLE payments", "DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ValidateSortOrder(tt.input), "input %q", tt.input)
	}
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "total", ValidateSortField("total", WorkOrderSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", WorkOrderSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("customer_id", WorkOrderSortFields, "created_at"))
	assert.Equal(t, "expected_date", ValidateSortField("expected_date; --", ReceivableSortFields, "expected_date"))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "occurred_at DESC", orderClause("", "", CashBookSortFields, "occurred_at"))
	assert.Equal(t, "value ASC", orderClause("value", "asc", CashBookSortFields, "occurred_at"))
	assert.Equal(t, "expected_date ASC", orderClause("deleted_at", "ASC", ReceivableSortFields, "expected_date"))
}
