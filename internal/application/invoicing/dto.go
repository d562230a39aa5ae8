package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Field rules of invoice requests are enforced by the domain so that messages
// are collected in one list after the customer lookup; binding only checks shape.

// CreateInvoiceRequest represents a request to create an invoice
type CreateInvoiceRequest struct {
	PaymentType  string                   `json:"payment_type"`
	PaidAmount   decimal.Decimal          `json:"paid_amount"`
	Items        []CreateInvoiceItemInput `json:"items"`
	ChequeDetail *ChequeDetailInput       `json:"cheque_detail"`
}

// CreateInvoiceItemInput represents an invoice line in the create request
type CreateInvoiceItemInput struct {
	StockID        uint            `json:"stock_id"`
	Qty            int             `json:"qty"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// ChequeDetailInput carries cheque data; ChequeDate is yyyy-mm-dd or RFC 3339
type ChequeDetailInput struct {
	ChequeNumber string `json:"cheque_number"`
	BankName     string `json:"bank_name"`
	ChequeDate   string `json:"cheque_date"`
}

// AppendPaymentRequest represents a further payment on an invoice
type AppendPaymentRequest struct {
	PaidAmount   decimal.Decimal    `json:"paid_amount"`
	PaymentType  string             `json:"payment_type"`
	ChequeDetail *ChequeDetailInput `json:"cheque_detail"`
}

// UpdateChequeStatusRequest represents a cheque clearance transition
type UpdateChequeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ReturnRequest represents a product return against an invoice
type ReturnRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
	ReturnQty int    `json:"return_qty"`
	Reason    string `json:"reason" binding:"max=500"`
}

// toDomain reads a date-only cheque date as midnight in loc
func (c *ChequeDetailInput) toDomain(loc *time.Location) (*invoicing.ChequeInput, error) {
	if c == nil {
		return nil, nil
	}
	in := &invoicing.ChequeInput{ChequeNumber: c.ChequeNumber, BankName: c.BankName}
	raw := strings.TrimSpace(c.ChequeDate)
	if raw == "" {
		return in, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			in.ChequeDate = &t
			return in, nil
		}
	}
	return nil, shared.ErrInvalidInput.WithDetails(fmt.Sprintf("Cheque date %q must be yyyy-mm-dd.", c.ChequeDate))
}

func (r CreateInvoiceRequest) toDraft(customerID uint, loc *time.Location) (invoicing.InvoiceDraft, error) {
	cheque, err := r.ChequeDetail.toDomain(loc)
	if err != nil {
		return invoicing.InvoiceDraft{}, err
	}
	draft := invoicing.InvoiceDraft{
		CustomerID:  customerID,
		PaymentType: invoicing.PaymentType(strings.ToUpper(strings.TrimSpace(r.PaymentType))),
		PaidAmount:  r.PaidAmount,
		Cheque:      cheque,
	}
	for _, item := range r.Items {
		draft.Items = append(draft.Items, invoicing.ItemDraft{
			StockID:        item.StockID,
			Qty:            item.Qty,
			SellingPrice:   item.SellingPrice,
			DiscountAmount: item.DiscountAmount,
		})
	}
	return draft, nil
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID             string                `json:"id"`
	CustomerID     uint                  `json:"customer_id"`
	CustomerName   string                `json:"customer_name,omitempty"`
	Status         string                `json:"status"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	OriginalAmount decimal.Decimal       `json:"original_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	BalanceDue     decimal.Decimal       `json:"balance_due"`
	Items          []InvoiceItemResponse `json:"items"`
	Payments       []PaymentResponse     `json:"payment_history"`
	Returns        []ReturnResponse      `json:"returns,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// InvoiceItemResponse represents an invoice line
type InvoiceItemResponse struct {
	ID             uint            `json:"id"`
	StockID        uint            `json:"stock_id"`
	ProductID      uint            `json:"product_id"`
	ProductTitle   string          `json:"product_title,omitempty"`
	Qty            int             `json:"qty"`
	ReturnedQty    int             `json:"returned_qty"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// PaymentResponse represents a payment history row
type PaymentResponse struct {
	ID          uint            `json:"id"`
	InvoiceID   string          `json:"invoice_id"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
	PaymentType string          `json:"payment_type"`
	Status      string          `json:"status"`
	Cheque      *ChequeResponse `json:"cheque_detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ChequeResponse represents cheque details
type ChequeResponse struct {
	ChequeNumber string    `json:"cheque_number"`
	BankName     string    `json:"bank_name"`
	ChequeDate   time.Time `json:"cheque_date"`
	Status       string    `json:"status"`
}

// ReturnResponse represents a processed return
type ReturnResponse struct {
	ID            uint                 `json:"id"`
	InvoiceID     string               `json:"invoice_id"`
	ProductID     uint                 `json:"product_id"`
	ReturnQty     int                  `json:"return_qty"`
	Reason        string               `json:"reason"`
	RefundAmount  decimal.Decimal      `json:"refund_amount"`
	Items         []ReturnItemResponse `json:"items"`
	InvoiceStatus string               `json:"invoice_status,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// ReturnItemResponse represents one line a return drew units from
type ReturnItemResponse struct {
	InvoiceItemID  uint            `json:"invoice_item_id"`
	StockID        uint            `json:"stock_id"`
	ReturnedQty    int             `json:"returned_qty"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// MetadataResponse summarises invoices of a period
type MetadataResponse struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	StatusCounts  map[string]int  `json:"status_counts"`
}

// ToInvoiceResponse converts a domain invoice to a response
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:             inv.ID,
		CustomerID:     inv.CustomerID,
		Status:         inv.Status.String(),
		TotalAmount:    shared.Round2(inv.EffectiveTotal()),
		OriginalAmount: shared.Round2(inv.Total()),
		PaidAmount:     shared.Round2(inv.SettledPaid()),
		BalanceDue:     shared.Round2(inv.Outstanding()),
		Items:          make([]InvoiceItemResponse, len(inv.Items)),
		Payments:       ToPaymentResponses(inv.Payments),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
	if inv.Customer != nil {
		resp.CustomerName = inv.Customer.Name
	}
	for i := range inv.Items {
		item := &inv.Items[i]
		resp.Items[i] = InvoiceItemResponse{
			ID:             item.ID,
			StockID:        item.StockID,
			ProductID:      item.ProductID,
			Qty:            item.Qty,
			ReturnedQty:    item.ReturnedQty,
			SellingPrice:   item.SellingPrice,
			DiscountAmount: item.DiscountAmount,
			LineTotal:      shared.Round2(item.EffectiveRevenue()),
		}
		if item.Stock != nil && item.Stock.Product != nil {
			resp.Items[i].ProductTitle = item.Stock.Product.Title
		}
	}
	return resp
}

// ToInvoiceResponses converts a slice of invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}

// ToPaymentResponse converts a payment row
func ToPaymentResponse(p *invoicing.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		PaidAmount:  p.PaidAmount,
		PaymentType: p.PaymentType.String(),
		Status:      p.Status.String(),
		CreatedAt:   p.CreatedAt,
	}
	if p.Cheque != nil {
		resp.Cheque = &ChequeResponse{
			ChequeNumber: p.Cheque.ChequeNumber,
			BankName:     p.Cheque.BankName,
			ChequeDate:   p.Cheque.ChequeDate,
			Status:       p.Cheque.Status.String(),
		}
	}
	return resp
}

// ToPaymentResponses converts payment rows
func ToPaymentResponses(payments []invoicing.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}

// ToReturnResponse converts a processed return
func ToReturnResponse(ret *invoicing.ProductReturn, status invoicing.InvoiceStatus) ReturnResponse {
	resp := ReturnResponse{
		ID:            ret.ID,
		InvoiceID:     ret.InvoiceID,
		ProductID:     ret.ProductID,
		ReturnQty:     ret.ReturnQty,
		Reason:        ret.Reason,
		RefundAmount:  ret.RefundAmount,
		Items:         make([]ReturnItemResponse, len(ret.Items)),
		InvoiceStatus: status.String(),
		CreatedAt:     ret.CreatedAt,
	}
	for i, item := range ret.Items {
		resp.Items[i] = ReturnItemResponse{
			InvoiceItemID:  item.InvoiceItemID,
			StockID:        item.StockID,
			ReturnedQty:    item.ReturnedQty,
			SellingPrice:   item.SellingPrice,
			DiscountAmount: item.DiscountAmount,
		}
	}
	return resp
}

// ToReturnHistory converts the stored returns of an invoice
func ToReturnHistory(returns []invoicing.ProductReturn) []ReturnResponse {
	out := make([]ReturnResponse, len(returns))
	for i := range returns {
		out[i] = ToReturnResponse(&returns[i], "")
	}
	return out
}

// ToMetadataResponse converts an invoice summary
func ToMetadataResponse(p shared.Period, m invoicing.Metadata) MetadataResponse {
	counts := make(map[string]int, len(m.StatusCounts))
	for status, n := range m.StatusCounts {
		counts[status.String()] = n
	}
	return MetadataResponse{
		From:          p.From,
		To:            p.To,
		Count:         m.Count,
		TotalAmount:   m.TotalAmount,
		PaidAmount:    m.PaidAmount,
		PendingAmount: m.PendingAmount,
		StatusCounts:  counts,
	}
}
