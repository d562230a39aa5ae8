package quotation

import (
	"time"

	"github.com/erp/invoicing/internal/domain/quotation"
	"github.com/shopspring/decimal"
)

// CreateQuotationRequest represents a request to quote stock lines to a customer
type CreateQuotationRequest struct {
	TotalAmount *decimal.Decimal           `json:"total_amount"`
	Items       []CreateQuotationItemInput `json:"items"`
}

// CreateQuotationItemInput is one quoted line
type CreateQuotationItemInput struct {
	StockID      uint            `json:"stock_id"`
	Qty          int             `json:"qty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

// UpdateTotalRequest replaces the quoted total
type UpdateTotalRequest struct {
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// QuotationResponse represents a quotation in API responses
type QuotationResponse struct {
	ID           string                  `json:"id"`
	CustomerID   uint                    `json:"customer_id"`
	CustomerName string                  `json:"customer_name,omitempty"`
	TotalAmount  decimal.Decimal         `json:"total_amount"`
	ExpiresAt    time.Time               `json:"expires_at"`
	Expired      bool                    `json:"expired"`
	Status       string                  `json:"status"`
	Items        []QuotationItemResponse `json:"items"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// QuotationItemResponse is one quoted line
type QuotationItemResponse struct {
	ID           uint            `json:"id"`
	StockID      uint            `json:"stock_id"`
	ProductTitle string          `json:"product_title,omitempty"`
	Qty          int             `json:"qty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
}

func (r CreateQuotationRequest) toDraft(customerID uint) quotation.Draft {
	draft := quotation.Draft{CustomerID: customerID, TotalAmount: r.TotalAmount}
	for _, item := range r.Items {
		draft.Items = append(draft.Items, quotation.ItemDraft{
			StockID:      item.StockID,
			Qty:          item.Qty,
			SellingPrice: item.SellingPrice,
		})
	}
	return draft
}

// ToQuotationResponse converts a domain quotation; expired is evaluated at now
func ToQuotationResponse(q *quotation.Quotation, now time.Time) QuotationResponse {
	resp := QuotationResponse{
		ID:          q.ID,
		CustomerID:  q.CustomerID,
		TotalAmount: q.TotalAmount,
		ExpiresAt:   q.ExpiresAt,
		Expired:     q.Expired(now),
		Status:      q.Status.String(),
		Items:       make([]QuotationItemResponse, 0, len(q.Items)),
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
	if q.Customer != nil {
		resp.CustomerName = q.Customer.Name
	}
	for _, item := range q.Items {
		line := QuotationItemResponse{
			ID:           item.ID,
			StockID:      item.StockID,
			Qty:          item.Qty,
			SellingPrice: item.SellingPrice,
		}
		if item.Stock != nil {
			line.ProductTitle = item.Stock.ProductTitle()
		}
		resp.Items = append(resp.Items, line)
	}
	return resp
}

// ToQuotationResponses converts a slice of quotations
func ToQuotationResponses(quotations []quotation.Quotation, now time.Time) []QuotationResponse {
	responses := make([]QuotationResponse, len(quotations))
	for i := range quotations {
		responses[i] = ToQuotationResponse(&quotations[i], now)
	}
	return responses
}
