package models

import (
	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/shared"
)

// CategoryModel is the persistence model for the Category entity
type CategoryModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status string `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Status:     shared.RecordStatus(m.Status),
	}
}

// FromDomain populates the persistence model from a domain Category entity
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.Status = string(c.Status)
}

// ProductModel is the persistence model for the Product entity
type ProductModel struct {
	BaseModel
	Title      string         `gorm:"type:varchar(200);not null"`
	CategoryID uint           `gorm:"not null;index"`
	Status     string         `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Category   *CategoryModel `gorm:"foreignKey:CategoryID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity
func (m *ProductModel) ToDomain() *catalog.Product {
	p := &catalog.Product{
		BaseEntity: m.BaseModel.ToDomain(),
		Title:      m.Title,
		CategoryID: m.CategoryID,
		Status:     shared.RecordStatus(m.Status),
	}
	if m.Category != nil {
		p.Category = m.Category.ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Product entity.
// The category association is never written through the product.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Title = p.Title
	m.CategoryID = p.CategoryID
	m.Status = string(p.Status)
}
