package handler

import (
	partnerapp "github.com/erp/invoicing/internal/application/partner"
	"github.com/gin-gonic/gin"
)

// CustomerHandler exposes customer reference data
type CustomerHandler struct {
	BaseHandler
	customerService *partnerapp.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(customerService *partnerapp.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// Create creates a customer
func (h *CustomerHandler) Create(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customer, err := h.customerService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Customer created successfully", customer)
}

// List lists customers; ?all=true includes inactive ones
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customerService.List(c.Request.Context(), c.Query("all") == "true")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Customers retrieved successfully", customers)
}

// GetByID retrieves a customer
func (h *CustomerHandler) GetByID(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	customer, err := h.customerService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Customer retrieved successfully", customer)
}

// Update edits a customer
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	customer, err := h.customerService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Customer updated successfully", customer)
}

// Delete marks a customer INACTIVE
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid customer ID")
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Customer deleted successfully", nil)
}
