package inventory

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/shared"
)

// StockService manages stock rows outside of invoicing
type StockService struct {
	stockRepo   inventory.StockRepository
	productRepo catalog.ProductRepository
	clock       func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(stockRepo inventory.StockRepository, productRepo catalog.ProductRepository) *StockService {
	return &StockService{stockRepo: stockRepo, productRepo: productRepo, clock: time.Now}
}

// Create adds stock. When an active row with the same product, vendor and
// prices exists its quantity is incremented instead.
func (s *StockService) Create(ctx context.Context, req CreateStockRequest) (*StockResponse, error) {
	details := inventory.StockDetails{
		ProductID:    req.ProductID,
		VendorID:     req.VendorID,
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Qty:          req.Qty,
	}
	stock, err := inventory.NewStock(details, s.clock())
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	existing, err := s.stockRepo.FindSameLot(ctx, details)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if req.Qty > 0 {
			if err := s.stockRepo.Increment(ctx, existing.ID, req.Qty); err != nil {
				return nil, err
			}
		}
		merged, err := s.stockRepo.FindByID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		response := ToStockResponse(merged)
		response.Merged = true
		return &response, nil
	}

	if err := s.stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}
	stock.Product = product
	response := ToStockResponse(stock)
	return &response, nil
}

// Update applies a partial edit
func (s *StockService) Update(ctx context.Context, id uint, req UpdateStockRequest) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	update := inventory.StockUpdate{
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		Qty:          req.Qty,
	}
	if req.Status != nil {
		status := shared.RecordStatus(*req.Status)
		update.Status = &status
	}
	if err := stock.Apply(update, s.clock()); err != nil {
		return nil, err
	}
	if err := s.stockRepo.Save(ctx, stock); err != nil {
		return nil, err
	}
	response := ToStockResponse(stock)
	return &response, nil
}

// GetByID retrieves a stock row
func (s *StockService) GetByID(ctx context.Context, id uint) (*StockResponse, error) {
	stock, err := s.stockRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToStockResponse(stock)
	return &response, nil
}

// List lists stock rows narrowed by category or vendor
func (s *StockService) List(ctx context.Context, query inventory.StockQuery) ([]StockResponse, error) {
	stocks, err := s.stockRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}
	return ToStockResponses(stocks), nil
}
