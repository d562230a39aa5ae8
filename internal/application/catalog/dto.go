package catalog

import (
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToCategoryResponse converts a domain category to a response
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Status:    c.Status.String(),
		CreatedAt: c.CreatedAt,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=200"`
	CategoryID uint   `json:"category_id" binding:"required"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	CategoryID   uint      `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToProductResponse converts a domain product to a response
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		CategoryID:   p.CategoryID,
		CategoryName: p.CategoryName(),
		Status:       p.Status.String(),
		CreatedAt:    p.CreatedAt,
	}
}
