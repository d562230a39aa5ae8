package handler

import (
	inventoryapp "github.com/erp/invoicing/internal/application/inventory"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// StockHandler exposes stock rows
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Create adds stock, merging into a matching active lot
func (h *StockHandler) Create(c *gin.Context) {
	var req inventoryapp.CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	stock, err := h.stockService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Stock saved successfully", stock)
}

// Update edits prices, quantity or status of a stock row
func (h *StockHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid stock ID")
		return
	}
	var req inventoryapp.UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	stock, err := h.stockService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Stock updated successfully", stock)
}

// GetByID retrieves a stock row
func (h *StockHandler) GetByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid stock ID")
		return
	}
	stock, err := h.stockService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Stock retrieved successfully", stock)
}

// List lists stock; ?all=true includes inactive rows, ?categoryId and
// ?vendorId narrow the result
func (h *StockHandler) List(c *gin.Context) {
	query := inventory.StockQuery{Visibility: shared.ActiveOnly}
	if c.Query("all") == "true" {
		query.Visibility = shared.IncludeInactive
	}
	var ok bool
	if query.CategoryID, ok = uintQuery(c, "categoryId"); !ok {
		h.BadRequest(c, "Invalid category ID")
		return
	}
	if query.VendorID, ok = uintQuery(c, "vendorId"); !ok {
		h.BadRequest(c, "Invalid vendor ID")
		return
	}
	stocks, err := h.stockService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Stock retrieved successfully", stocks)
}
