package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/partner"
	"github.com/erp/invoicing/internal/domain/shared"
	"go.uber.org/zap"
)

// InvoiceService runs the invoice lifecycle: creation against stock, payments,
// cheque clearance and returns. Every mutation runs in one transaction.
type InvoiceService struct {
	invoiceRepo    invoicing.InvoiceRepository
	returnRepo     invoicing.ReturnRepository
	customerRepo   partner.CustomerRepository
	stockRepo      inventory.StockRepository
	txScope        TransactionScope
	idGen          IDGenerator
	locker         Locker
	policy         inventory.DepletionPolicy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	clock          func() time.Time
	location       *time.Location
}

// InvoiceServiceOption configures an InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithLocker sets the cross-replica invoice locker
func WithLocker(l Locker) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if l != nil {
			s.locker = l
		}
	}
}

// WithDepletionPolicy sets what happens to stock rows reaching zero
func WithDepletionPolicy(p inventory.DepletionPolicy) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.policy = p
	}
}

// WithClock overrides time.Now
func WithClock(clock func() time.Time) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.clock = clock
	}
}

// WithLocation sets the business time zone that decides calendar days
func WithLocation(loc *time.Location) InvoiceServiceOption {
	return func(s *InvoiceService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithReturnRepository enables the return history on invoice reads
func WithReturnRepository(r invoicing.ReturnRepository) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.returnRepo = r
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	stockRepo inventory.StockRepository,
	txScope TransactionScope,
	idGen IDGenerator,
	logger *zap.Logger,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		stockRepo:    stockRepo,
		txScope:      txScope,
		idGen:        idGen,
		locker:       NoopLocker{},
		logger:       logger,
		clock:        time.Now,
		location:     time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InvoiceService) now() time.Time {
	return s.clock().In(s.location)
}

// SetEventPublisher sets the publisher that receives events after commit
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create raises an invoice for customerID, records its first payment and
// reserves stock for every line.
func (s *InvoiceService) Create(ctx context.Context, customerID uint, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil || !customer.IsActive() {
		if err != nil && shared.KindOf(err) != shared.KindNotFound {
			return nil, err
		}
		return nil, partner.ErrCustomerNotFound.
			WithMessage(fmt.Sprintf("Customer not found for ID %d", customerID)).
			WithDetails(fmt.Sprintf("Customer with ID %d does not exist.", customerID))
	}

	draft, err := req.toDraft(customerID, s.location)
	if err != nil {
		return nil, err
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ledger := inventory.NewLedger(s.stockRepo, s.policy)
	stocks := make(map[uint]*inventory.Stock)
	demand := draft.StockDemand()
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

	id, err := s.idGen.Generate(ctx, s.invoiceRepo.ExistsByID)
	if err != nil {
		return nil, err
	}
	inv, err := invoicing.NewInvoice(id, draft, stocks, s.now())
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.InvoiceRepo().Create(ctx, inv); err != nil {
			return err
		}
		txLedger := inventory.NewLedger(repos.StockRepo(), s.policy)
		for i := range inv.Items {
			if _, err := txLedger.Reserve(ctx, inv.Items[i].StockID, inv.Items[i].Qty); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID),
		zap.Uint("customer_id", customerID),
		zap.String("status", inv.Status.String()),
		zap.String("total", inv.TotalAmount.StringFixed(2)))
	inv.Customer = customer
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// AppendPayment records a further CASH or CHEQUE payment. Overdue cheques of
// the invoice are expired first and stay expired even if the payment fails.
func (s *InvoiceService) AppendPayment(ctx context.Context, invoiceID string, req AppendPaymentRequest) (*InvoiceResponse, error) {
	cheque, err := req.ChequeDetail.toDomain(s.location)
	if err != nil {
		return nil, err
	}
	paymentType := invoicing.PaymentType(strings.ToUpper(strings.TrimSpace(req.PaymentType)))

	release, err := s.locker.Acquire(ctx, invoiceLockKey(invoiceID))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		inv     *invoicing.Invoice
		outcome error
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		now := s.now()
		expired := inv.ExpireOverdueCheques(now)
		for _, p := range expired {
			if err := repos.InvoiceRepo().UpdatePaymentStatus(ctx, p); err != nil {
				return err
			}
		}
		payment, err := inv.AppendPayment(req.PaidAmount, paymentType, cheque, now)
		if err != nil {
			if len(expired) == 0 {
				return err
			}
			outcome = err
			return repos.InvoiceRepo().SaveState(ctx, inv)
		}
		if err := repos.InvoiceRepo().AddPayment(ctx, payment); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveState(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inv)
	if outcome != nil {
		return nil, outcome
	}
	s.logger.Info("Payment recorded",
		zap.String("invoice_id", invoiceID),
		zap.String("payment_type", paymentType.String()),
		zap.String("amount", req.PaidAmount.StringFixed(2)),
		zap.String("status", inv.Status.String()))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// UpdateChequeStatus moves the cheque of paymentID to status. An overdue
// pending cheque is expired and committed before ErrChequeExpired is returned.
func (s *InvoiceService) UpdateChequeStatus(ctx context.Context, paymentID uint, req UpdateChequeStatusRequest) (*PaymentResponse, error) {
	status := invoicing.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	invoiceID, err := s.invoiceRepo.FindInvoiceIDByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, invoiceLockKey(invoiceID))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		inv     *invoicing.Invoice
		payment *invoicing.Payment
		outcome error
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		var result invoicing.ChequeOutcome
		payment, result, err = inv.UpdateChequeStatus(paymentID, status, s.now())
		switch result {
		case invoicing.ChequeUnchanged:
			return err
		case invoicing.ChequeLapsed:
			// the expiry is kept; the request itself still fails
			outcome = err
		}
		if err := repos.InvoiceRepo().UpdatePaymentStatus(ctx, payment); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveState(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, inv)
	if outcome != nil {
		s.logger.Info("Cheque expired on access",
			zap.String("invoice_id", invoiceID),
			zap.Uint("payment_id", paymentID))
		return nil, outcome
	}
	s.logger.Info("Cheque status updated",
		zap.String("invoice_id", invoiceID),
		zap.Uint("payment_id", paymentID),
		zap.String("cheque_status", payment.Status.String()),
		zap.String("invoice_status", inv.Status.String()))

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ProcessReturn takes units of a product back, restocks them and records the refund
func (s *InvoiceService) ProcessReturn(ctx context.Context, req ReturnRequest) (*ReturnResponse, error) {
	release, err := s.locker.Acquire(ctx, invoiceLockKey(req.InvoiceID))
	if err != nil {
		return nil, err
	}
	defer release()

	var (
		inv *invoicing.Invoice
		ret *invoicing.ProductReturn
	)
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		ret, err = inv.ApplyReturn(req.ProductID, req.ReturnQty, strings.TrimSpace(req.Reason), s.now())
		if err != nil {
			return err
		}

		for _, returned := range ret.Items {
			for i := range inv.Items {
				if inv.Items[i].ID == returned.InvoiceItemID {
					if err := repos.InvoiceRepo().UpdateReturnedQty(ctx, &inv.Items[i]); err != nil {
						return err
					}
				}
			}
		}
		if err := repos.ReturnRepo().Create(ctx, ret); err != nil {
			return err
		}
		ledger := inventory.NewLedger(repos.StockRepo(), s.policy)
		for _, returned := range ret.Items {
			if _, err := ledger.Restock(ctx, returned.StockID, returned.ReturnedQty); err != nil {
				return err
			}
		}
		if err := repos.InvoiceRepo().AddPayment(ctx, inv.RefundPayment()); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveState(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Return processed",
		zap.String("invoice_id", req.InvoiceID),
		zap.Uint("product_id", req.ProductID),
		zap.Int("qty", req.ReturnQty),
		zap.String("refund", ret.RefundAmount.StringFixed(2)))
	s.publish(ctx, inv)

	response := ToReturnResponse(ret, inv.Status)
	return &response, nil
}

// ExpireOverdueCheques expires every pending cheque dated before today and
// returns how many were expired
func (s *InvoiceService) ExpireOverdueCheques(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.invoiceRepo.FindWithOverdueCheques(ctx, shared.DayOf(now).From)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		n, err := s.expireInvoiceCheques(ctx, id, now)
		if err != nil {
			s.logger.Warn("Failed to expire cheques", zap.String("invoice_id", id), zap.Error(err))
			continue
		}
		total += n
	}
	if total > 0 {
		s.logger.Info("Expired overdue cheques", zap.Int("count", total))
	}
	return total, nil
}

func (s *InvoiceService) expireInvoiceCheques(ctx context.Context, invoiceID string, now time.Time) (int, error) {
	release, err := s.locker.Acquire(ctx, invoiceLockKey(invoiceID))
	if err != nil {
		return 0, err
	}
	defer release()

	var inv *invoicing.Invoice
	var expired []*invoicing.Payment
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		inv, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		expired = inv.ExpireOverdueCheques(now)
		for _, p := range expired {
			if err := repos.InvoiceRepo().UpdatePaymentStatus(ctx, p); err != nil {
				return err
			}
		}
		if len(expired) == 0 {
			return nil
		}
		return repos.InvoiceRepo().SaveState(ctx, inv)
	})
	if err != nil {
		return 0, err
	}
	s.publish(ctx, inv)
	return len(expired), nil
}

// GetByID retrieves an invoice with items, payments, cheques and returns
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID string) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	s.expireOnRead(ctx, inv, s.now())
	response := ToInvoiceResponse(inv)
	if s.returnRepo != nil {
		returns, err := s.returnRepo.FindByInvoice(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		response.Returns = ToReturnHistory(returns)
	}
	return &response, nil
}

// List lists invoices created in the month (yyyy-mm) or day (yyyy-mm-dd) of
// date, defaulting to the current month
func (s *InvoiceService) List(ctx context.Context, date string) ([]InvoiceResponse, error) {
	invoices, _, err := s.findInPeriod(ctx, date)
	if err != nil {
		return nil, err
	}
	return ToInvoiceResponses(invoices), nil
}

// PaymentHistory lists the payments of an invoice, oldest first
func (s *InvoiceService) PaymentHistory(ctx context.Context, invoiceID string) ([]PaymentResponse, error) {
	exists, err := s.invoiceRepo.ExistsByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, invoicing.ErrInvoiceNotFound
	}
	payments, err := s.invoiceRepo.FindPayments(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if now := s.now(); invoicing.HasOverdueCheque(payments, now) {
		if _, err := s.expireInvoiceCheques(ctx, invoiceID, now); err != nil {
			s.logger.Warn("Failed to expire cheques on read", zap.String("invoice_id", invoiceID), zap.Error(err))
		}
		invoicing.ExpireOverdue(payments, now)
	}
	return ToPaymentResponses(payments), nil
}

// Metadata summarises invoices of the date filter by derived status
func (s *InvoiceService) Metadata(ctx context.Context, date string) (*MetadataResponse, error) {
	invoices, period, err := s.findInPeriod(ctx, date)
	if err != nil {
		return nil, err
	}
	response := ToMetadataResponse(period, invoicing.Summarize(invoices))
	return &response, nil
}

func (s *InvoiceService) findInPeriod(ctx context.Context, date string) ([]invoicing.Invoice, shared.Period, error) {
	now := s.now()
	period, err := shared.ParseDateFilter(date, now)
	if err != nil {
		return nil, shared.Period{}, err
	}
	invoices, err := s.invoiceRepo.FindAll(ctx, shared.DefaultFilter().WithPeriod(period))
	if err != nil {
		return nil, shared.Period{}, err
	}
	for i := range invoices {
		s.expireOnRead(ctx, &invoices[i], now)
	}
	return invoices, period, nil
}

// expireOnRead persists the expiry of overdue cheques found by a read and
// applies it to the loaded copy
func (s *InvoiceService) expireOnRead(ctx context.Context, inv *invoicing.Invoice, now time.Time) {
	if !inv.HasOverdueCheques(now) {
		return
	}
	if _, err := s.expireInvoiceCheques(ctx, inv.ID, now); err != nil {
		s.logger.Warn("Failed to expire cheques on read", zap.String("invoice_id", inv.ID), zap.Error(err))
	}
	inv.ExpireOverdueCheques(now)
	inv.ClearDomainEvents()
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoicing.Invoice) {
	if inv == nil {
		return
	}
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish invoice events",
			zap.String("invoice_id", inv.ID),
			zap.Error(err))
	}
}
