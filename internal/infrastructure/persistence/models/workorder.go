package models

import (
	"time"

	"github.com/garage/backend/internal/domain/workorder"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkOrderModel is the persistence model for the WorkOrder aggregate
type WorkOrderModel struct {
	AggregateModel
	Number       string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID   *uuid.UUID       `gorm:"type:uuid;index"`
	VehiclePlate string           `gorm:"type:varchar(20);index"`
	Description  string           `gorm:"type:text"`
	Diagnosis    string           `gorm:"type:text"`
	Notes        string           `gorm:"type:text"`
	Status       workorder.Status `gorm:"type:varchar(20);not null;index"`
	PartsTotal   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	LaborTotal   decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	Total        decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	ClosedAt     *time.Time
	DeletedAt    *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (WorkOrderModel) TableName() string {
	return "work_orders"
}

// ToDomain converts the persistence model to a domain WorkOrder
func (m *WorkOrderModel) ToDomain() *workorder.WorkOrder {
	return &workorder.WorkOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		CustomerID:        m.CustomerID,
		VehiclePlate:      m.VehiclePlate,
		Description:       m.Description,
		Diagnosis:         m.Diagnosis,
		Notes:             m.Notes,
		Status:            m.Status,
		PartsTotal:        m.PartsTotal,
		LaborTotal:        m.LaborTotal,
		Total:             m.Total,
		ClosedAt:          m.ClosedAt,
		DeletedAt:         m.DeletedAt,
	}
}

// FromDomain populates the persistence model from a domain WorkOrder
func (m *WorkOrderModel) FromDomain(wo *workorder.WorkOrder) {
	m.FromDomainAggregateRoot(wo.BaseAggregateRoot)
	m.Number = wo.Number
	m.CustomerID = wo.CustomerID
	m.VehiclePlate = wo.VehiclePlate
	m.Description = wo.Description
	m.Diagnosis = wo.Diagnosis
	m.Notes = wo.Notes
	m.Status = wo.Status
	m.PartsTotal = wo.PartsTotal
	m.LaborTotal = wo.LaborTotal
	m.Total = wo.Total
	m.ClosedAt = wo.ClosedAt
	m.DeletedAt = wo.DeletedAt
}

// WorkOrderFromDomain creates a persistence model from a domain WorkOrder
func WorkOrderFromDomain(wo *workorder.WorkOrder) *WorkOrderModel {
	m := &WorkOrderModel{}
	m.FromDomain(wo)
	return m
}

// WorkOrderItemModel is the persistence model for part lines
type WorkOrderItemModel struct {
	BaseModel
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartID      *uuid.UUID      `gorm:"type:uuid;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitCost    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DeletedAt   *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (WorkOrderItemModel) TableName() string {
	return "work_order_items"
}

// ToDomain converts the model to a domain Item
func (m *WorkOrderItemModel) ToDomain() *workorder.Item {
	return &workorder.Item{
		BaseEntity:  m.BaseModel.ToDomain(),
		WorkOrderID: m.WorkOrderID,
		PartID:      m.PartID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		UnitCost:    m.UnitCost,
		DeletedAt:   m.DeletedAt,
	}
}

// WorkOrderItemFromDomain creates a persistence model from a domain Item
func WorkOrderItemFromDomain(i *workorder.Item) *WorkOrderItemModel {
	m := &WorkOrderItemModel{
		WorkOrderID: i.WorkOrderID,
		PartID:      i.PartID,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice,
		UnitCost:    i.UnitCost,
		DeletedAt:   i.DeletedAt,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}

// WorkOrderLaborModel is the persistence model for labor lines
type WorkOrderLaborModel struct {
	BaseModel
	WorkOrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Hours       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DeletedAt   *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (WorkOrderLaborModel) TableName() string {
	return "work_order_labors"
}

// ToDomain converts the model to a domain Labor
func (m *WorkOrderLaborModel) ToDomain() *workorder.Labor {
	return &workorder.Labor{
		BaseEntity:  m.BaseModel.ToDomain(),
		WorkOrderID: m.WorkOrderID,
		Description: m.Description,
		Hours:       m.Hours,
		HourlyRate:  m.HourlyRate,
		DeletedAt:   m.DeletedAt,
	}
}

// WorkOrderLaborFromDomain creates a persistence model from a domain Labor
func WorkOrderLaborFromDomain(l *workorder.Labor) *WorkOrderLaborModel {
	m := &WorkOrderLaborModel{
		WorkOrderID: l.WorkOrderID,
		Description: l.Description,
		Hours:       l.Hours,
		HourlyRate:  l.HourlyRate,
		DeletedAt:   l.DeletedAt,
	}
	m.FromDomainBaseEntity(l.BaseEntity)
	return m
}
