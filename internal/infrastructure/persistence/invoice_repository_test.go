package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	appinvoicing "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var lifecycleNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newLifecycleService(db *gorm.DB, clock func() time.Time) *appinvoicing.InvoiceService {
	return appinvoicing.NewInvoiceService(
		NewGormInvoiceRepository(db),
		NewGormCustomerRepository(db),
		NewGormStockRepository(db),
		NewGormTransactionScope(db),
		shared.NewInvoiceIDGenerator(),
		zap.NewNop(),
		appinvoicing.WithClock(clock),
	)
}

func TestInvoiceLifecycle_ChequeClearanceAndReturn(t *testing.T) {
	db := setupTestDB(t)
	s := seedCatalog(t, db, 5)
	ctx := context.Background()
	now := lifecycleNow
	svc := newLifecycleService(db, func() time.Time { return now })

	created, err := svc.Create(ctx, s.customerID, appinvoicing.CreateInvoiceRequest{
		PaymentType: "CHEQUE",
		PaidAmount:  decimal.NewFromInt(200),
		Items: []appinvoicing.CreateInvoiceItemInput{
			{StockID: s.stockID, Qty: 2, SellingPrice: decimal.NewFromInt(100)},
		},
		ChequeDetail: &appinvoicing.ChequeDetailInput{ChequeNumber: "000451", BankName: "Commercial Bank", ChequeDate: "2026-03-12"},
	})
	require.NoError(t, err)
	assert.Len(t, created.ID, 15)
	assert.Equal(t, "PENDING", created.Status)
	require.Len(t, created.Payments, 1)
	paymentID := created.Payments[0].ID
	require.NotZero(t, paymentID)

	stock, err := NewGormStockRepository(db).FindByID(ctx, s.stockID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Qty)

	cleared, err := svc.UpdateChequeStatus(ctx, paymentID, appinvoicing.UpdateChequeStatusRequest{Status: "CLEARED"})
	require.NoError(t, err)
	assert.Equal(t, "CLEARED", cleared.Status)

	inv, err := NewGormInvoiceRepository(db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicing.InvoiceStatusPaid, inv.Status)
	assert.Equal(t, invoicing.PaymentStatusCleared, inv.Payments[0].Cheque.Status)
	assert.Equal(t, "Perera Electricals", inv.Customer.Name)

	now = lifecycleNow.Add(24 * time.Hour)
	ret, err := svc.ProcessReturn(ctx, appinvoicing.ReturnRequest{InvoiceID: created.ID, ProductID: s.productID, ReturnQty: 1, Reason: "faulty"})
	require.NoError(t, err)
	assert.True(t, ret.RefundAmount.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, "PAID", ret.InvoiceStatus)

	inv, err = NewGormInvoiceRepository(db).FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Items[0].ReturnedQty)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(100)))
	require.Len(t, inv.Payments, 2)
	assert.Equal(t, invoicing.PaymentStatusReturn, inv.Payments[1].Status)
	assert.True(t, inv.Payments[1].PaidAmount.Equal(decimal.NewFromInt(-100)))

	stock, err = NewGormStockRepository(db).FindByID(ctx, s.stockID)
	require.NoError(t, err)
	assert.Equal(t, 4, stock.Qty)

	returns, err := NewGormReturnRepository(db).FindByInvoice(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, returns, 1)
	require.Len(t, returns[0].Items, 1)
	assert.Equal(t, inv.Items[0].ID, returns[0].Items[0].InvoiceItemID)
}

func TestInvoiceLifecycle_CombinedDemandIsChecked(t *testing.T) {
	db := setupTestDB(t)
	s := seedCatalog(t, db, 1)
	ctx := context.Background()
	svc := newLifecycleService(db, func() time.Time { return lifecycleNow })

	// each line alone fits the single unit; together they do not
	_, err := svc.Create(ctx, s.customerID, appinvoicing.CreateInvoiceRequest{
		PaymentType: "CASH",
		PaidAmount:  decimal.NewFromInt(100),
		Items: []appinvoicing.CreateInvoiceItemInput{
			{StockID: s.stockID, Qty: 1, SellingPrice: decimal.NewFromInt(100)},
			{StockID: s.stockID, Qty: 1, SellingPrice: decimal.NewFromInt(100)},
		},
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var count int64
	require.NoError(t, db.Table("invoices").Count(&count).Error)
	assert.Zero(t, count)

	stock, err := NewGormStockRepository(db).FindByID(ctx, s.stockID)
	require.NoError(t, err)
	assert.Equal(t, 1, stock.Qty)
}

func TestGormTransactionScope_RollsBackEveryRepository(t *testing.T) {
	db := setupTestDB(t)
	s := seedCatalog(t, db, 2)
	ctx := context.Background()

	inv := &invoicing.Invoice{
		ID: "200000000000002", CustomerID: s.customerID, Status: invoicing.InvoiceStatusPaid,
		CreatedAt: lifecycleNow, UpdatedAt: lifecycleNow,
		Payments: []invoicing.Payment{{
			InvoiceID: "200000000000002", PaidAmount: decimal.NewFromInt(100),
			PaymentType: invoicing.PaymentTypeCash, Status: invoicing.PaymentStatusCleared,
			CreatedAt: lifecycleNow, UpdatedAt: lifecycleNow,
		}},
	}
	err := NewGormTransactionScope(db).Execute(ctx, func(repos appinvoicing.TransactionalRepositories) error {
		require.NoError(t, repos.InvoiceRepo().Create(ctx, inv))
		applied, err := repos.StockRepo().Decrement(ctx, s.stockID, 2)
		require.NoError(t, err)
		require.True(t, applied)
		return inventory.InsufficientStock("Ceiling Fan", 0, 1)
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

	var count int64
	require.NoError(t, db.Table("invoices").Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Table("payment_history").Count(&count).Error)
	assert.Zero(t, count)

	stock, err := NewGormStockRepository(db).FindByID(ctx, s.stockID)
	require.NoError(t, err)
	assert.Equal(t, 2, stock.Qty)
}

func TestInvoiceLifecycle_ConcurrentSalesNeverOversell(t *testing.T) {
	db := setupTestDB(t)
	s := seedCatalog(t, db, 3)
	ctx := context.Background()
	svc := newLifecycleService(db, func() time.Time { return lifecycleNow })

	const buyers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for range buyers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, s.customerID, appinvoicing.CreateInvoiceRequest{
				PaymentType: "CASH",
				PaidAmount:  decimal.NewFromInt(100),
				Items:       []appinvoicing.CreateInvoiceItemInput{{StockID: s.stockID, Qty: 1, SellingPrice: decimal.NewFromInt(100)}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	stock, err := NewGormStockRepository(db).FindByID(ctx, s.stockID)
	require.NoError(t, err)
	assert.Equal(t, 0, stock.Qty)
}

func TestGormInvoiceRepository_OverdueChequesAndPeriods(t *testing.T) {
	db := setupTestDB(t)
	s := seedCatalog(t, db, 10)
	ctx := context.Background()
	repo := NewGormInvoiceRepository(db)

	chequeDate := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	inv := &invoicing.Invoice{
		ID:         "100000000000001",
		CustomerID: s.customerID,
		Status:     invoicing.InvoiceStatusPending,
		CreatedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Items: []invoicing.InvoiceItem{{
			InvoiceID: "100000000000001", StockID: s.stockID, ProductID: s.productID, Qty: 1,
			SellingPrice: decimal.NewFromInt(100), CreatedAt: seedTime,
		}},
		Payments: []invoicing.Payment{{
			InvoiceID: "100000000000001", PaidAmount: decimal.NewFromInt(100),
			PaymentType: invoicing.PaymentTypeCheque, Status: invoicing.PaymentStatusPending,
			CreatedAt: seedTime, UpdatedAt: seedTime,
			Cheque: &invoicing.ChequeDetail{
				ChequeNumber: "77", BankName: "HNB", ChequeDate: chequeDate,
				Status: invoicing.PaymentStatusPending, CreatedAt: seedTime, UpdatedAt: seedTime,
			},
		}},
	}
	require.NoError(t, repo.Create(ctx, inv))
	require.NotZero(t, inv.Payments[0].ID)
	assert.Equal(t, inv.Payments[0].ID, inv.Payments[0].Cheque.PaymentID)

	ids, err := repo.FindWithOverdueCheques(ctx, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, ids, "a cheque dated today is not overdue")

	ids, err = repo.FindWithOverdueCheques(ctx, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []string{inv.ID}, ids)

	invoiceID, err := repo.FindInvoiceIDByPaymentID(ctx, inv.Payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, invoiceID)
	_, err = repo.FindInvoiceIDByPaymentID(ctx, 999)
	assert.ErrorIs(t, err, invoicing.ErrChequeNotFound)

	march := shared.MonthOf(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	listed, err := repo.FindAll(ctx, shared.DefaultFilter().WithPeriod(march))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Items[0].Stock)
	assert.Equal(t, "Fans", listed[0].Items[0].Stock.CategoryName())

	april := shared.MonthOf(time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC))
	listed, err = repo.FindAll(ctx, shared.DefaultFilter().WithPeriod(april))
	require.NoError(t, err)
	assert.Empty(t, listed)

	exists, err := repo.ExistsByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByID(ctx, "nope")
	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
}
