package models

import (
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// TotalAmount and Status are snapshots rewritten on every recomputation.
type InvoiceModel struct {
	ID          string             `gorm:"type:varchar(15);primaryKey"`
	CustomerID  uint               `gorm:"not null;index"`
	Status      string             `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt   time.Time          `gorm:"not null;index"`
	UpdatedAt   time.Time          `gorm:"not null"`
	Customer    *CustomerModel     `gorm:"foreignKey:CustomerID"`
	Items       []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments    []PaymentModel     `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		Status:      invoicing.InvoiceStatus(m.Status),
		TotalAmount: m.TotalAmount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		Items:       make([]invoicing.InvoiceItem, len(m.Items)),
		Payments:    make([]invoicing.Payment, len(m.Payments)),
	}
	if m.Customer != nil {
		inv.Customer = m.Customer.ToDomain()
	}
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	for i := range m.Payments {
		inv.Payments[i] = m.Payments[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
// Customer and stock associations are references and are only read.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.ID = inv.ID
	m.CustomerID = inv.CustomerID
	m.Status = string(inv.Status)
	m.TotalAmount = inv.TotalAmount
	m.CreatedAt = inv.CreatedAt
	m.UpdatedAt = inv.UpdatedAt
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
	m.Payments = make([]PaymentModel, len(inv.Payments))
	for i := range inv.Payments {
		m.Payments[i].FromDomain(&inv.Payments[i])
	}
}

// InvoiceItemModel is the persistence model for an invoice line
type InvoiceItemModel struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"`
	InvoiceID      string          `gorm:"type:varchar(15);not null;index"`
	StockID        uint            `gorm:"not null;index"`
	ProductID      uint            `gorm:"not null;index"`
	Qty            int             `gorm:"not null"`
	SellingPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReturnedQty    int             `gorm:"not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	Stock          *StockModel     `gorm:"foreignKey:StockID"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() invoicing.InvoiceItem {
	item := invoicing.InvoiceItem{
		ID:             m.ID,
		InvoiceID:      m.InvoiceID,
		StockID:        m.StockID,
		ProductID:      m.ProductID,
		Qty:            m.Qty,
		SellingPrice:   m.SellingPrice,
		DiscountAmount: m.DiscountAmount,
		ReturnedQty:    m.ReturnedQty,
		CreatedAt:      m.CreatedAt,
	}
	if m.Stock != nil {
		item.Stock = m.Stock.ToDomain()
	}
	return item
}

// FromDomain populates the persistence model from a domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(item *invoicing.InvoiceItem) {
	m.ID = item.ID
	m.InvoiceID = item.InvoiceID
	m.StockID = item.StockID
	m.ProductID = item.ProductID
	m.Qty = item.Qty
	m.SellingPrice = item.SellingPrice
	m.DiscountAmount = item.DiscountAmount
	m.ReturnedQty = item.ReturnedQty
	m.CreatedAt = item.CreatedAt
}

// PaymentModel is the persistence model for one payment history row.
// PaidAmount is signed; refunds are negative RETURN rows.
type PaymentModel struct {
	ID          uint               `gorm:"primaryKey;autoIncrement"`
	InvoiceID   string             `gorm:"type:varchar(15);not null;index"`
	PaidAmount  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PaymentType string             `gorm:"type:varchar(20);not null"`
	Status      string             `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time          `gorm:"not null"`
	UpdatedAt   time.Time          `gorm:"not null"`
	Cheque      *ChequeDetailModel `gorm:"foreignKey:PaymentID"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payment_history"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() invoicing.Payment {
	p := invoicing.Payment{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		PaidAmount:  m.PaidAmount,
		PaymentType: invoicing.PaymentType(m.PaymentType),
		Status:      invoicing.PaymentStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Cheque != nil {
		cheque := m.Cheque.ToDomain()
		p.Cheque = &cheque
	}
	return p
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *invoicing.Payment) {
	m.ID = p.ID
	m.InvoiceID = p.InvoiceID
	m.PaidAmount = p.PaidAmount
	m.PaymentType = string(p.PaymentType)
	m.Status = string(p.Status)
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
	m.Cheque = nil
	if p.Cheque != nil {
		m.Cheque = &ChequeDetailModel{}
		m.Cheque.FromDomain(p.Cheque)
	}
}

// ChequeDetailModel is the persistence model for the instrument data of a CHEQUE payment
type ChequeDetailModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	PaymentID    uint      `gorm:"not null;uniqueIndex"`
	ChequeNumber string    `gorm:"type:varchar(50);not null"`
	BankName     string    `gorm:"type:varchar(100);not null"`
	ChequeDate   time.Time `gorm:"not null;index"`
	Status       string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ChequeDetailModel) TableName() string {
	return "cheque_details"
}

// ToDomain converts the persistence model to a domain ChequeDetail
func (m *ChequeDetailModel) ToDomain() invoicing.ChequeDetail {
	return invoicing.ChequeDetail{
		ID:           m.ID,
		PaymentID:    m.PaymentID,
		ChequeNumber: m.ChequeNumber,
		BankName:     m.BankName,
		ChequeDate:   m.ChequeDate,
		Status:       invoicing.PaymentStatus(m.Status),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain ChequeDetail
func (m *ChequeDetailModel) FromDomain(c *invoicing.ChequeDetail) {
	m.ID = c.ID
	m.PaymentID = c.PaymentID
	m.ChequeNumber = c.ChequeNumber
	m.BankName = c.BankName
	m.ChequeDate = c.ChequeDate
	m.Status = string(c.Status)
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
}

// ProductReturnModel is the persistence model for an immutable product return
type ProductReturnModel struct {
	ID           uint              `gorm:"primaryKey;autoIncrement"`
	InvoiceID    string            `gorm:"type:varchar(15);not null;index"`
	ProductID    uint              `gorm:"not null;index"`
	ReturnQty    int               `gorm:"not null"`
	Reason       string            `gorm:"type:text"`
	RefundAmount decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time         `gorm:"not null"`
	Items        []ReturnItemModel `gorm:"foreignKey:ProductReturnID"`
}

// TableName returns the table name for GORM
func (ProductReturnModel) TableName() string {
	return "product_returns"
}

// ToDomain converts the persistence model to a domain ProductReturn
func (m *ProductReturnModel) ToDomain() *invoicing.ProductReturn {
	ret := &invoicing.ProductReturn{
		ID:           m.ID,
		InvoiceID:    m.InvoiceID,
		ProductID:    m.ProductID,
		ReturnQty:    m.ReturnQty,
		Reason:       m.Reason,
		RefundAmount: m.RefundAmount,
		CreatedAt:    m.CreatedAt,
		Items:        make([]invoicing.ReturnItem, len(m.Items)),
	}
	for i, item := range m.Items {
		ret.Items[i] = invoicing.ReturnItem{
			ID:              item.ID,
			ProductReturnID: item.ProductReturnID,
			InvoiceItemID:   item.InvoiceItemID,
			StockID:         item.StockID,
			ReturnedQty:     item.ReturnedQty,
			SellingPrice:    item.SellingPrice,
			DiscountAmount:  item.DiscountAmount,
		}
	}
	return ret
}

// FromDomain populates the persistence model from a domain ProductReturn
func (m *ProductReturnModel) FromDomain(ret *invoicing.ProductReturn) {
	m.ID = ret.ID
	m.InvoiceID = ret.InvoiceID
	m.ProductID = ret.ProductID
	m.ReturnQty = ret.ReturnQty
	m.Reason = ret.Reason
	m.RefundAmount = ret.RefundAmount
	m.CreatedAt = ret.CreatedAt
	m.Items = make([]ReturnItemModel, len(ret.Items))
	for i, item := range ret.Items {
		m.Items[i] = ReturnItemModel{
			ID:              item.ID,
			ProductReturnID: item.ProductReturnID,
			InvoiceItemID:   item.InvoiceItemID,
			StockID:         item.StockID,
			ReturnedQty:     item.ReturnedQty,
			SellingPrice:    item.SellingPrice,
			DiscountAmount:  item.DiscountAmount,
		}
	}
}

// ReturnItemModel snapshots the invoice line a returned unit came from
type ReturnItemModel struct {
	ID              uint            `gorm:"primaryKey;autoIncrement"`
	ProductReturnID uint            `gorm:"not null;index"`
	InvoiceItemID   uint            `gorm:"not null;index"`
	StockID         uint            `gorm:"not null"`
	ReturnedQty     int             `gorm:"not null"`
	SellingPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ReturnItemModel) TableName() string {
	return "return_items"
}
