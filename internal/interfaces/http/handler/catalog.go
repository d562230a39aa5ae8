package handler

import (
	catalogapp "github.com/erp/invoicing/internal/application/catalog"
	"github.com/gin-gonic/gin"
)

// CatalogHandler exposes categories and products
type CatalogHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
	productService  *catalogapp.ProductService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(categoryService *catalogapp.CategoryService, productService *catalogapp.ProductService) *CatalogHandler {
	return &CatalogHandler{
		categoryService: categoryService,
		productService:  productService,
	}
}

// CreateCategory creates a category
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Category created successfully", category)
}

// ListCategories lists active categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Categories retrieved successfully", categories)
}

// GetCategory retrieves a category
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}
	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Category retrieved successfully", category)
}

// CreateProduct creates a product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Product created successfully", product)
}

// ListProducts lists active products, optionally of one ?categoryId
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	categoryID, ok := uintQuery(c, "categoryId")
	if !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}
	products, err := h.productService.List(c.Request.Context(), categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Products retrieved successfully", products)
}

// GetProduct retrieves a product
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Product retrieved successfully", product)
}
