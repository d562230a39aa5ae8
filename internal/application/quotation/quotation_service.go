package quotation

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/quotation"
	"github.com/erp/invoicing/internal/domain/shared"
	"go.uber.org/zap"
)

// IDGenerator draws unused quotation identifiers
type IDGenerator interface {
	Generate(ctx context.Context, exists shared.ExistsFunc) (string, error)
}

// QuotationService handles quotation operations
type QuotationService struct {
	quotationRepo quotation.Repository
	customerRepo  partner.CustomerRepository
	stockRepo     inventory.StockRepository
	idGen         IDGenerator
	policy        inventory.DepletionPolicy
	logger        *zap.Logger
	clock         func() time.Time
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo quotation.Repository,
	customerRepo partner.CustomerRepository,
	stockRepo inventory.StockRepository,
	idGen IDGenerator,
	policy inventory.DepletionPolicy,
	logger *zap.Logger,
) *QuotationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotationService{
		quotationRepo: quotationRepo,
		customerRepo:  customerRepo,
		stockRepo:     stockRepo,
		idGen:         idGen,
		policy:        policy,
		logger:        logger,
		clock:         time.Now,
	}
}

// Create quotes stock lines to customerID. Stock is checked, never reserved.
func (s *QuotationService) Create(ctx context.Context, customerID uint, req CreateQuotationRequest) (*QuotationResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil || !customer.IsActive() {
		if err != nil && shared.KindOf(err) != shared.KindNotFound {
			return nil, err
		}
		return nil, partner.ErrCustomerNotFound.
			WithMessage(fmt.Sprintf("Customer not found for ID %d", customerID))
	}

	draft := req.toDraft(customerID)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ledger := inventory.NewLedger(s.stockRepo, s.policy)
	demand := make(map[uint]int)
	for _, item := range draft.Items {
		demand[item.StockID] += item.Qty
	}
	stocks := make(map[uint]*inventory.Stock, len(demand))
	for _, item := range draft.Items {
		if _, seen := stocks[item.StockID]; seen {
			continue
		}
		stock, err := ledger.Check(ctx, item.StockID, demand[item.StockID])
		if err != nil {
			return nil, err
		}
		stocks[item.StockID] = stock
	}

	id, err := s.idGen.Generate(ctx, s.quotationRepo.ExistsByID)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	q, err := quotation.New(id, draft, now)
	if err != nil {
		return nil, err
	}
	if err := s.quotationRepo.Create(ctx, q); err != nil {
		return nil, err
	}
	q.Customer = customer
	for i := range q.Items {
		q.Items[i].Stock = stocks[q.Items[i].StockID]
	}

	s.logger.Info("Quotation created",
		zap.String("quotation_id", q.ID),
		zap.Uint("customer_id", customerID),
		zap.String("total", q.TotalAmount.StringFixed(2)))

	response := ToQuotationResponse(q, now)
	return &response, nil
}

// GetByID retrieves an active quotation
func (s *QuotationService) GetByID(ctx context.Context, id string) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToQuotationResponse(q, s.clock())
	return &response, nil
}

// List lists active quotations of the month or day selected by date
func (s *QuotationService) List(ctx context.Context, date string) ([]QuotationResponse, error) {
	now := s.clock()
	period, err := shared.ParseDateFilter(date, now.UTC())
	if err != nil {
		return nil, err
	}
	quotations, err := s.quotationRepo.FindAll(ctx, shared.DefaultFilter().WithPeriod(period))
	if err != nil {
		return nil, err
	}
	return ToQuotationResponses(quotations, now), nil
}

// UpdateTotal replaces the quoted total of an active quotation
func (s *QuotationService) UpdateTotal(ctx context.Context, id string, req UpdateTotalRequest) (*QuotationResponse, error) {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	if err := q.UpdateTotal(req.TotalAmount, now); err != nil {
		return nil, err
	}
	if err := s.quotationRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	response := ToQuotationResponse(q, now)
	return &response, nil
}

// Delete soft-deletes a quotation
func (s *QuotationService) Delete(ctx context.Context, id string) error {
	q, err := s.quotationRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	q.Delete(s.clock())
	if err := s.quotationRepo.Save(ctx, q); err != nil {
		return err
	}
	s.logger.Info("Quotation deleted", zap.String("quotation_id", id))
	return nil
}
