package handler

import (
	quotationapp "github.com/erp/invoicing/internal/application/quotation"
	"github.com/gin-gonic/gin"
)

// QuotationHandler exposes quotation endpoints
type QuotationHandler struct {
	BaseHandler
	quotationService *quotationapp.QuotationService
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *quotationapp.QuotationService) *QuotationHandler {
	return &QuotationHandler{quotationService: quotationService}
}

// Create quotes stock lines to a customer
func (h *QuotationHandler) Create(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		h.BadRequest(c, "Invalid customer ID", "Customer ID must be a positive number.")
		return
	}
	var req quotationapp.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	q, err := h.quotationService.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Quotation created successfully", q)
}

// List lists quotations of a month or day
func (h *QuotationHandler) List(c *gin.Context) {
	quotations, err := h.quotationService.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Quotations retrieved successfully", quotations)
}

// GetOne retrieves one quotation
func (h *QuotationHandler) GetOne(c *gin.Context) {
	id := c.Query("quotationId")
	if id == "" {
		h.BadRequest(c, "Quotation ID is required", "Query parameter quotationId is required.")
		return
	}
	q, err := h.quotationService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Quotation retrieved successfully", q)
}

// UpdateTotal replaces the quoted total
func (h *QuotationHandler) UpdateTotal(c *gin.Context) {
	var req quotationapp.UpdateTotalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	q, err := h.quotationService.UpdateTotal(c.Request.Context(), c.Param("quotationId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Quotation updated successfully", q)
}

// Delete soft-deletes a quotation
func (h *QuotationHandler) Delete(c *gin.Context) {
	if err := h.quotationService.Delete(c.Request.Context(), c.Param("quotationId")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Quotation deleted successfully", nil)
}
