// Package catalog holds product and category reference data.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

var (
	ErrProductNotFound  = shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found")
	ErrCategoryNotFound = shared.NewNotFoundError("CATEGORY_NOT_FOUND", "Category not found")
	ErrDuplicateName    = shared.ErrAlreadyExists.WithMessage("A category with this name already exists")
)

// Category groups products for reporting (motors, gearboxes, cables, ...)
type Category struct {
	shared.BaseEntity
	Name   string
	Status shared.RecordStatus
}

// NewCategory creates an active category
func NewCategory(name string, now time.Time) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrInvalidInput.WithDetails("Category name is required.")
	}
	c := &Category{Name: name, Status: shared.StatusActive}
	c.Touch(now)
	return c, nil
}

// Product is a sellable item; stock rows reference it
type Product struct {
	shared.BaseEntity
	Title      string
	CategoryID uint
	Category   *Category
	Status     shared.RecordStatus
}

// NewProduct creates an active product
func NewProduct(title string, categoryID uint, now time.Time) (*Product, error) {
	var v shared.ValidationErrors
	title = strings.TrimSpace(title)
	v.Check(title == "", "Product title is required.")
	v.Check(categoryID == 0, "Valid category ID required.")
	if err := v.Err(); err != nil {
		return nil, err
	}
	p := &Product{Title: title, CategoryID: categoryID, Status: shared.StatusActive}
	p.Touch(now)
	return p, nil
}

// CategoryName returns the category label, or "Uncategorized" when not loaded
func (p *Product) CategoryName() string {
	if p.Category == nil || p.Category.Name == "" {
		return "Uncategorized"
	}
	return p.Category.Name
}

// CategoryRepository is the persistence port for categories
type CategoryRepository interface {
	FindByID(ctx context.Context, id uint) (*Category, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Category, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Save(ctx context.Context, category *Category) error
}

// ProductRepository is the persistence port for products
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter, categoryID *uint) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}
