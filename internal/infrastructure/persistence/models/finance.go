package models

import (
	"time"

	"github.com/garage/backend/internal/domain/finance"
	"github.com/garage/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for customer payments
type PaymentModel struct {
	BaseModel
	WorkOrderID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	Method          finance.PaymentMethod `gorm:"type:varchar(10);not null"`
	GrossValue      decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Installments    int                   `gorm:"not null;default:1"`
	OperatorID      *uuid.UUID            `gorm:"type:uuid;index"`
	BankAccountID   *uuid.UUID            `gorm:"type:uuid;index"`
	CashBookEntryID *uuid.UUID            `gorm:"type:uuid;index"`
	DeletedAt       *time.Time            `gorm:"index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the model to a domain Payment
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		WorkOrderID:     m.WorkOrderID,
		Method:          m.Method,
		GrossValue:      m.GrossValue,
		Installments:    m.Installments,
		OperatorID:      m.OperatorID,
		BankAccountID:   m.BankAccountID,
		CashBookEntryID: m.CashBookEntryID,
		DeletedAt:       m.DeletedAt,
	}
}

// PaymentFromDomain creates a persistence model from a domain Payment
func PaymentFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{
		WorkOrderID:     p.WorkOrderID,
		Method:          p.Method,
		GrossValue:      p.GrossValue,
		Installments:    p.Installments,
		OperatorID:      p.OperatorID,
		BankAccountID:   p.BankAccountID,
		CashBookEntryID: p.CashBookEntryID,
		DeletedAt:       p.DeletedAt,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// CashBookEntryModel is the persistence model for cash book entries
type CashBookEntryModel struct {
	BaseModel
	Description   string                `gorm:"type:varchar(255);not null"`
	Value         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Direction     finance.Direction     `gorm:"type:varchar(3);not null"`
	Category      finance.EntryCategory `gorm:"type:varchar(20);not null;index"`
	Origin        finance.EntryOrigin   `gorm:"type:varchar(10);not null"`
	BankAccountID *uuid.UUID            `gorm:"type:uuid;index"`
	ReceivableID  *uuid.UUID            `gorm:"type:uuid;index"`
	OccurredAt    time.Time             `gorm:"not null;index"`
	DeletedAt     *time.Time            `gorm:"index"`
	DeleteReason  string                `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (CashBookEntryModel) TableName() string {
	return "cash_book_entries"
}

// ToDomain converts the model to a domain CashBookEntry
func (m *CashBookEntryModel) ToDomain() *finance.CashBookEntry {
	return &finance.CashBookEntry{
		BaseEntity:    m.BaseModel.ToDomain(),
		SoftDelete:    shared.SoftDelete{DeletedAt: m.DeletedAt, DeleteReason: m.DeleteReason},
		Description:   m.Description,
		Value:         m.Value,
		Direction:     m.Direction,
		Category:      m.Category,
		Origin:        m.Origin,
		BankAccountID: m.BankAccountID,
		ReceivableID:  m.ReceivableID,
		OccurredAt:    m.OccurredAt,
	}
}

// CashBookEntryFromDomain creates a persistence model from a domain CashBookEntry
func CashBookEntryFromDomain(e *finance.CashBookEntry) *CashBookEntryModel {
	m := &CashBookEntryModel{
		Description:   e.Description,
		Value:         e.Value,
		Direction:     e.Direction,
		Category:      e.Category,
		Origin:        e.Origin,
		BankAccountID: e.BankAccountID,
		ReceivableID:  e.ReceivableID,
		OccurredAt:    e.OccurredAt,
		DeletedAt:     e.DeletedAt,
		DeleteReason:  e.DeleteReason,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// BankAccountModel is the persistence model for bank accounts
type BankAccountModel struct {
	BaseModel
	Name    string          `gorm:"type:varchar(100);not null"`
	Bank    string          `gorm:"type:varchar(100)"`
	Balance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active  bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the model to a domain BankAccount
func (m *BankAccountModel) ToDomain() *finance.BankAccount {
	return &finance.BankAccount{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Bank:       m.Bank,
		Balance:    m.Balance,
		Active:     m.Active,
	}
}

// BankAccountFromDomain creates a persistence model from a domain BankAccount
func BankAccountFromDomain(a *finance.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		Name:    a.Name,
		Bank:    a.Bank,
		Balance: a.Balance,
		Active:  a.Active,
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// OperatorModel is the persistence model for card operators
type OperatorModel struct {
	BaseModel
	Name                 string          `gorm:"type:varchar(100);not null"`
	DebitRate            decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	DebitLeadDays        int             `gorm:"not null;default:0"`
	CreditSingleRate     decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CreditSingleLeadDays int             `gorm:"not null;default:0"`
	CreditMultiRate      decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0"`
	CreditMultiLeadDays  int             `gorm:"not null;default:0"`
	DestinationAccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Active               bool            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OperatorModel) TableName() string {
	return "operators"
}

// ToDomain converts the model to a domain Operator
func (m *OperatorModel) ToDomain() *finance.Operator {
	return &finance.Operator{
		BaseEntity:           m.BaseModel.ToDomain(),
		Name:                 m.Name,
		DebitRate:            m.DebitRate,
		DebitLeadDays:        m.DebitLeadDays,
		CreditSingleRate:     m.CreditSingleRate,
		CreditSingleLeadDays: m.CreditSingleLeadDays,
		CreditMultiRate:      m.CreditMultiRate,
		CreditMultiLeadDays:  m.CreditMultiLeadDays,
		DestinationAccountID: m.DestinationAccountID,
		Active:               m.Active,
	}
}

// OperatorFromDomain creates a persistence model from a domain Operator
func OperatorFromDomain(o *finance.Operator) *OperatorModel {
	m := &OperatorModel{
		Name:                 o.Name,
		DebitRate:            o.DebitRate,
		DebitLeadDays:        o.DebitLeadDays,
		CreditSingleRate:     o.CreditSingleRate,
		CreditSingleLeadDays: o.CreditSingleLeadDays,
		CreditMultiRate:      o.CreditMultiRate,
		CreditMultiLeadDays:  o.CreditMultiLeadDays,
		DestinationAccountID: o.DestinationAccountID,
		Active:               o.Active,
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}

// ReceivableModel is the persistence model for card settlement installments
type ReceivableModel struct {
	BaseModel
	WorkOrderID       uuid.UUID                `gorm:"type:uuid;not null;index"`
	PaymentID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	OperatorID        uuid.UUID                `gorm:"type:uuid;not null;index"`
	Installment       int                      `gorm:"not null"`
	TotalInstallments int                      `gorm:"not null"`
	GrossAmount       decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	FeeAmount         decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	NetAmount         decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	ExpectedDate      time.Time                `gorm:"not null;index"`
	Status            finance.ReceivableStatus `gorm:"type:varchar(10);not null;index"`
	ConfirmedBy       string                   `gorm:"type:varchar(100)"`
	ConfirmedAt       *time.Time
}

// TableName returns the table name for GORM
func (ReceivableModel) TableName() string {
	return "receivables"
}

// ToDomain converts the model to a domain Receivable
func (m *ReceivableModel) ToDomain() *finance.Receivable {
	return &finance.Receivable{
		BaseEntity:        m.BaseModel.ToDomain(),
		WorkOrderID:       m.WorkOrderID,
		PaymentID:         m.PaymentID,
		OperatorID:        m.OperatorID,
		Installment:       m.Installment,
		TotalInstallments: m.TotalInstallments,
		GrossAmount:       m.GrossAmount,
		FeeAmount:         m.FeeAmount,
		NetAmount:         m.NetAmount,
		ExpectedDate:      m.ExpectedDate,
		Status:            m.Status,
		ConfirmedBy:       m.ConfirmedBy,
		ConfirmedAt:       m.ConfirmedAt,
	}
}

// ReceivableFromDomain creates a persistence model from a domain Receivable
func ReceivableFromDomain(r *finance.Receivable) *ReceivableModel {
	m := &ReceivableModel{
		WorkOrderID:       r.WorkOrderID,
		PaymentID:         r.PaymentID,
		OperatorID:        r.OperatorID,
		Installment:       r.Installment,
		TotalInstallments: r.TotalInstallments,
		GrossAmount:       r.GrossAmount,
		FeeAmount:         r.FeeAmount,
		NetAmount:         r.NetAmount,
		ExpectedDate:      r.ExpectedDate,
		Status:            r.Status,
		ConfirmedBy:       r.ConfirmedBy,
		ConfirmedAt:       r.ConfirmedAt,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// FinancialClosingModel is the persistence model for closings.
// The unique index on work_order_id enforces one closing per work order.
type FinancialClosingModel struct {
	BaseModel
	WorkOrderID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	RealPartsCost decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalRevenue  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ClosedBy      string          `gorm:"type:varchar(100)"`
	ClosedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (FinancialClosingModel) TableName() string {
	return "financial_closings"
}

// ToDomain converts the model to a domain FinancialClosing
func (m *FinancialClosingModel) ToDomain() *finance.FinancialClosing {
	return &finance.FinancialClosing{
		BaseEntity:    m.BaseModel.ToDomain(),
		WorkOrderID:   m.WorkOrderID,
		RealPartsCost: m.RealPartsCost,
		TotalRevenue:  m.TotalRevenue,
		ClosedBy:      m.ClosedBy,
		ClosedAt:      m.ClosedAt,
	}
}

// FinancialClosingFromDomain creates a persistence model from a domain FinancialClosing
func FinancialClosingFromDomain(c *finance.FinancialClosing) *FinancialClosingModel {
	m := &FinancialClosingModel{
		WorkOrderID:   c.WorkOrderID,
		RealPartsCost: c.RealPartsCost,
		TotalRevenue:  c.TotalRevenue,
		ClosedBy:      c.ClosedBy,
		ClosedAt:      c.ClosedAt,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}
