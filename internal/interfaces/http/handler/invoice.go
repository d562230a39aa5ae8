package handler

import (
	"net/http"

	invoicingapp "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler exposes the invoice lifecycle endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
	printService   *invoicingapp.PrintService
}

// NewInvoiceHandler creates a new InvoiceHandler. printService may be nil.
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService, printService *invoicingapp.PrintService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		printService:   printService,
	}
}

// Create godoc
// @Summary  Create an invoice for a customer
// @Tags     invoices
// @Router   /invoice/create/customer/{customerId} [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	customerID, ok := uintParam(c, "customerId")
	if !ok {
		h.BadRequest(c, "Invalid customer ID", "Customer ID must be a positive number.")
		return
	}

	var req invoicingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Invoice created successfully", invoice)
}

// AppendPayment godoc
// @Summary  Record a further payment on an invoice
// @Tags     invoices
// @Router   /invoice/update/{invoiceId} [patch]
func (h *InvoiceHandler) AppendPayment(c *gin.Context) {
	var req invoicingapp.AppendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	invoice, err := h.invoiceService.AppendPayment(c.Request.Context(), c.Param("invoiceId"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Payment added successfully", invoice)
}

// UpdateChequeStatus godoc
// @Summary  Move a cheque payment to CLEARED, REJECTED or EXPIRED
// @Tags     invoices
// @Router   /invoice/update/cheque/payment-history/{paymentId} [patch]
func (h *InvoiceHandler) UpdateChequeStatus(c *gin.Context) {
	paymentID, ok := uintParam(c, "paymentId")
	if !ok {
		h.BadRequest(c, "Invalid payment ID", "Payment ID must be a positive number.")
		return
	}

	var req invoicingapp.UpdateChequeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	payment, err := h.invoiceService.UpdateChequeStatus(c.Request.Context(), paymentID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Cheque status updated successfully", payment)
}

// ProcessReturn godoc
// @Summary  Return units of a product sold on an invoice
// @Tags     invoices
// @Router   /invoice/returns [post]
func (h *InvoiceHandler) ProcessReturn(c *gin.Context) {
	var req invoicingapp.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ret, err := h.invoiceService.ProcessReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, "Return processed successfully", ret)
}

// List godoc
// @Summary  List invoices of a month (yyyy-mm) or day (yyyy-mm-dd)
// @Tags     invoices
// @Router   /invoice/get/all [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.invoiceService.List(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Invoices retrieved successfully", invoices)
}

// GetOne godoc
// @Summary  Get an invoice with items and payment history
// @Tags     invoices
// @Router   /invoice/get/one [get]
func (h *InvoiceHandler) GetOne(c *gin.Context) {
	invoiceID, ok := h.invoiceIDQuery(c)
	if !ok {
		return
	}
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Invoice retrieved successfully", invoice)
}

// PaymentHistory godoc
// @Summary  List the payments of an invoice
// @Tags     invoices
// @Router   /invoice/get/payment-history [get]
func (h *InvoiceHandler) PaymentHistory(c *gin.Context) {
	invoiceID, ok := h.invoiceIDQuery(c)
	if !ok {
		return
	}
	payments, err := h.invoiceService.PaymentHistory(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Payment history retrieved successfully", payments)
}

// Metadata godoc
// @Summary  Summarise invoices of a period by status
// @Tags     invoices
// @Router   /invoice/get/meta-data [get]
func (h *InvoiceHandler) Metadata(c *gin.Context) {
	meta, err := h.invoiceService.Metadata(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, "Invoice metadata retrieved successfully", meta)
}

// Print godoc
// @Summary  Render an invoice as PDF
// @Tags     invoices
// @Produce  application/pdf
// @Router   /invoice/print [get]
func (h *InvoiceHandler) Print(c *gin.Context) {
	invoiceID, ok := h.invoiceIDQuery(c)
	if !ok {
		return
	}
	if h.printService == nil {
		h.HandleError(c, invoicingapp.ErrPrintingDisabled)
		return
	}
	doc, err := h.printService.Print(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, "application/pdf", doc.Body)
}

func (h *InvoiceHandler) invoiceIDQuery(c *gin.Context) (string, bool) {
	invoiceID := c.Query("invoiceId")
	if invoiceID == "" {
		h.BadRequest(c, "Invoice ID is required", "Query parameter invoiceId is required.")
		return "", false
	}
	return invoiceID, true
}
