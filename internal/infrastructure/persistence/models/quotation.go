package models

import (
	"time"

	"github.com/erp/invoicing/internal/domain/quotation"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuotationModel is the persistence model for a quotation
type QuotationModel struct {
	ID          string               `gorm:"type:varchar(15);primaryKey"`
	CustomerID  uint                 `gorm:"not null;index"`
	TotalAmount decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiresAt   time.Time            `gorm:"not null"`
	Status      string               `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	CreatedAt   time.Time            `gorm:"not null;index"`
	UpdatedAt   time.Time            `gorm:"not null"`
	Customer    *CustomerModel       `gorm:"foreignKey:CustomerID"`
	Items       []QuotationItemModel `gorm:"foreignKey:QuotationID;references:ID"`
}

// TableName returns the table name for GORM
func (QuotationModel) TableName() string {
	return "quotations"
}

// ToDomain converts the persistence model to a domain Quotation
func (m *QuotationModel) ToDomain() *quotation.Quotation {
	q := &quotation.Quotation{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		TotalAmount: m.TotalAmount,
		ExpiresAt:   m.ExpiresAt,
		Status:      shared.RecordStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Items:       make([]quotation.Item, len(m.Items)),
	}
	if m.Customer != nil {
		q.Customer = m.Customer.ToDomain()
	}
	for i, item := range m.Items {
		q.Items[i] = quotation.Item{
			ID:           item.ID,
			QuotationID:  item.QuotationID,
			StockID:      item.StockID,
			Qty:          item.Qty,
			SellingPrice: item.SellingPrice,
		}
		if item.Stock != nil {
			q.Items[i].Stock = item.Stock.ToDomain()
		}
	}
	return q
}

// FromDomain populates the persistence model from a domain Quotation
func (m *QuotationModel) FromDomain(q *quotation.Quotation) {
	m.ID = q.ID
	m.CustomerID = q.CustomerID
	m.TotalAmount = q.TotalAmount
	m.ExpiresAt = q.ExpiresAt
	m.Status = string(q.Status)
	m.CreatedAt = q.CreatedAt
	m.UpdatedAt = q.UpdatedAt
	m.Items = make([]QuotationItemModel, len(q.Items))
	for i, item := range q.Items {
		m.Items[i] = QuotationItemModel{
			ID:           item.ID,
			QuotationID:  q.ID,
			StockID:      item.StockID,
			Qty:          item.Qty,
			SellingPrice: item.SellingPrice,
		}
	}
}

// QuotationItemModel is the persistence model for a quoted stock line
type QuotationItemModel struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"`
	QuotationID  string          `gorm:"type:varchar(15);not null;index"`
	StockID      uint            `gorm:"not null"`
	Qty          int             `gorm:"not null"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Stock        *StockModel     `gorm:"foreignKey:StockID"`
}

// TableName returns the table name for GORM
func (QuotationItemModel) TableName() string {
	return "quotation_items"
}

// All lists every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&CategoryModel{}, &ProductModel{}, &StockModel{}, &CustomerModel{},
		&InvoiceModel{}, &InvoiceItemModel{}, &PaymentModel{}, &ChequeDetailModel{},
		&ProductReturnModel{}, &ReturnItemModel{},
		&QuotationModel{}, &QuotationItemModel{},
	}
}
