package models

import (
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// StockModel is the persistence model for a stock row
type StockModel struct {
	BaseModel
	ProductID    uint            `gorm:"not null;index"`
	VendorID     *uint           `gorm:"index"`
	BuyingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Qty          int             `gorm:"not null;default:0;check:chk_stocks_qty,qty >= 0"`
	Status       string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
	Product      *ProductModel   `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (StockModel) TableName() string {
	return "stocks"
}

// ToDomain converts the persistence model to a domain Stock entity
func (m *StockModel) ToDomain() *inventory.Stock {
	s := &inventory.Stock{
		BaseEntity:   m.BaseModel.ToDomain(),
		ProductID:    m.ProductID,
		VendorID:     m.VendorID,
		BuyingPrice:  m.BuyingPrice,
		SellingPrice: m.SellingPrice,
		Qty:          m.Qty,
		Status:       shared.RecordStatus(m.Status),
	}
	if m.Product != nil {
		s.Product = m.Product.ToDomain()
	}
	return s
}

// FromDomain populates the persistence model from a domain Stock entity
func (m *StockModel) FromDomain(s *inventory.Stock) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.ProductID = s.ProductID
	m.VendorID = s.VendorID
	m.BuyingPrice = s.BuyingPrice
	m.SellingPrice = s.SellingPrice
	m.Qty = s.Qty
	m.Status = string(s.Status)
}
