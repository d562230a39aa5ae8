package inventory

import (
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// CreateStockRequest represents a request to add stock; a matching active
// lot absorbs the quantity instead of a new row being created
type CreateStockRequest struct {
	ProductID    uint            `json:"product_id" binding:"required"`
	VendorID     *uint           `json:"vendor_id"`
	BuyingPrice  decimal.Decimal `json:"buying_price" binding:"decimal_gte0"`
	SellingPrice decimal.Decimal `json:"selling_price" binding:"decimal_gte0"`
	Qty          int             `json:"qty" binding:"gte=0"`
}

// UpdateStockRequest represents a partial stock edit
type UpdateStockRequest struct {
	BuyingPrice  *decimal.Decimal `json:"buying_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	Qty          *int             `json:"qty" binding:"omitempty,gte=0"`
	Status       *string          `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// StockResponse represents a stock row in API responses
type StockResponse struct {
	ID           uint            `json:"id"`
	ProductID    uint            `json:"product_id"`
	ProductTitle string          `json:"product_title"`
	CategoryName string          `json:"category_name"`
	VendorID     *uint           `json:"vendor_id,omitempty"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Qty          int             `json:"qty"`
	Status       string          `json:"status"`
	Merged       bool            `json:"merged,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToStockResponse converts a domain stock row to a response
func ToStockResponse(s *inventory.Stock) StockResponse {
	resp := StockResponse{
		ID:           s.ID,
		ProductID:    s.ProductID,
		CategoryName: s.CategoryName(),
		VendorID:     s.VendorID,
		BuyingPrice:  s.BuyingPrice,
		SellingPrice: s.SellingPrice,
		Qty:          s.Qty,
		Status:       s.Status.String(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Product != nil {
		resp.ProductTitle = s.Product.Title
	}
	return resp
}

// ToStockResponses converts a slice of stock rows
func ToStockResponses(stocks []inventory.Stock) []StockResponse {
	out := make([]StockResponse, len(stocks))
	for i := range stocks {
		out[i] = ToStockResponse(&stocks[i])
	}
	return out
}
