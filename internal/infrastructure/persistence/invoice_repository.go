package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// withGraph preloads the associations every invoice read needs
func withGraph(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Stock.Product.Category").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Payments.Cheque")
}

// FindByID loads the invoice graph
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id string) (*invoicing.Invoice, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads the invoice graph holding a lock on the invoice row.
// Preloads run as separate statements and do not inherit the lock.
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id string) (*invoicing.Invoice, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormInvoiceRepository) find(db *gorm.DB, id string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := db.Scopes(withGraph).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoicing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindInvoiceIDByPaymentID resolves the owning invoice of a payment row
func (r *GormInvoiceRepository) FindInvoiceIDByPaymentID(ctx context.Context, paymentID uint) (string, error) {
	var model models.PaymentModel
	err := r.db.WithContext(ctx).Select("id", "invoice_id").First(&model, "id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", invoicing.ErrChequeNotFound
		}
		return "", err
	}
	return model.InvoiceID, nil
}

// ExistsByID reports whether an invoice with id exists
func (r *GormInvoiceRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists invoices created within filter.Period with their graphs loaded
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	err := r.db.WithContext(ctx).
		Scopes(withGraph, createdWithin(filter.Period), orderBy(filter, InvoiceSortFields, "created_at")).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// FindPayments lists the payments of an invoice, oldest first
func (r *GormInvoiceRepository) FindPayments(ctx context.Context, invoiceID string) ([]invoicing.Payment, error) {
	var rows []models.PaymentModel
	err := r.db.WithContext(ctx).Preload("Cheque").
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	payments := make([]invoicing.Payment, len(rows))
	for i := range rows {
		payments[i] = rows[i].ToDomain()
	}
	return payments, nil
}

// FindWithOverdueCheques lists invoices holding pending cheques dated before day
func (r *GormInvoiceRepository) FindWithOverdueCheques(ctx context.Context, day time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Distinct("payment_history.invoice_id").
		Joins("JOIN cheque_details ON cheque_details.payment_id = payment_history.id").
		Where("cheque_details.status = ? AND cheque_details.cheque_date < ?",
			string(invoicing.PaymentStatusPending), day).
		Order("payment_history.invoice_id").
		Pluck("payment_history.invoice_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Create inserts the invoice with its items, payments and cheques, then
// copies the generated row IDs back onto the aggregate
func (r *GormInvoiceRepository) Create(ctx context.Context, inv *invoicing.Invoice) error {
	model := &models.InvoiceModel{}
	model.FromDomain(inv)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	for i := range inv.Items {
		inv.Items[i].ID = model.Items[i].ID
	}
	for i := range inv.Payments {
		assignPaymentIDs(&inv.Payments[i], &model.Payments[i])
	}
	return nil
}

// SaveState writes the derived status and total snapshot
func (r *GormInvoiceRepository) SaveState(ctx context.Context, inv *invoicing.Invoice) error {
	result := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("id = ?", inv.ID).
		UpdateColumns(map[string]any{
			"status":       string(inv.Status),
			"total_amount": inv.TotalAmount,
			"updated_at":   inv.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invoicing.ErrInvoiceNotFound
	}
	return nil
}

// AddPayment inserts a payment row and its cheque detail
func (r *GormInvoiceRepository) AddPayment(ctx context.Context, p *invoicing.Payment) error {
	model := &models.PaymentModel{}
	model.FromDomain(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	assignPaymentIDs(p, model)
	return nil
}

// UpdatePaymentStatus writes the status of the payment and of its cheque detail
func (r *GormInvoiceRepository) UpdatePaymentStatus(ctx context.Context, p *invoicing.Payment) error {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.PaymentModel{}).
		Where("id = ?", p.ID).
		UpdateColumns(map[string]any{
			"status":     string(p.Status),
			"updated_at": p.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invoicing.ErrChequeNotFound
	}
	if p.Cheque == nil {
		return nil
	}
	return db.Model(&models.ChequeDetailModel{}).
		Where("payment_id = ?", p.ID).
		UpdateColumns(map[string]any{
			"status":     string(p.Cheque.Status),
			"updated_at": p.Cheque.UpdatedAt,
		}).Error
}

// UpdateReturnedQty writes the returned quantity of an invoice line
func (r *GormInvoiceRepository) UpdateReturnedQty(ctx context.Context, item *invoicing.InvoiceItem) error {
	return r.db.WithContext(ctx).Model(&models.InvoiceItemModel{}).
		Where("id = ?", item.ID).
		UpdateColumn("returned_qty", item.ReturnedQty).Error
}

func assignPaymentIDs(p *invoicing.Payment, model *models.PaymentModel) {
	p.ID = model.ID
	if p.Cheque != nil && model.Cheque != nil {
		p.Cheque.ID = model.Cheque.ID
		p.Cheque.PaymentID = model.ID
	}
}

// GormReturnRepository implements ReturnRepository using GORM
type GormReturnRepository struct {
	db *gorm.DB
}

// NewGormReturnRepository creates a new GormReturnRepository
func NewGormReturnRepository(db *gorm.DB) *GormReturnRepository {
	return &GormReturnRepository{db: db}
}

// Create inserts a return with its item snapshots
func (r *GormReturnRepository) Create(ctx context.Context, ret *invoicing.ProductReturn) error {
	model := &models.ProductReturnModel{}
	model.FromDomain(ret)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	ret.ID = model.ID
	for i := range ret.Items {
		ret.Items[i].ID = model.Items[i].ID
		ret.Items[i].ProductReturnID = model.ID
	}
	return nil
}

// FindByInvoice lists the returns of an invoice, oldest first
func (r *GormReturnRepository) FindByInvoice(ctx context.Context, invoiceID string) ([]invoicing.ProductReturn, error) {
	var rows []models.ProductReturnModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	returns := make([]invoicing.ProductReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

var (
	_ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
	_ invoicing.ReturnRepository  = (*GormReturnRepository)(nil)
)
