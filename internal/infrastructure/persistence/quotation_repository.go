package persistence

import (
	"context"
	"errors"

	"github.com/erp/invoicing/internal/domain/quotation"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormQuotationRepository implements quotation.Repository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

func quotationGraph(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Items.Stock.Product.Category")
}

// FindByID returns an ACTIVE quotation with its lines
func (r *GormQuotationRepository) FindByID(ctx context.Context, id string) (*quotation.Quotation, error) {
	var model models.QuotationModel
	err := r.db.WithContext(ctx).Scopes(quotationGraph).
		Where("status = ?", string(shared.StatusActive)).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, quotation.QuotationNotFound(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsByID reports whether the id is taken, including by deleted quotations
func (r *GormQuotationRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.QuotationModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists quotations admitted by filter
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]quotation.Quotation, error) {
	var rows []models.QuotationModel
	err := r.db.WithContext(ctx).
		Scopes(quotationGraph, visible(filter.Visibility), createdWithin(filter.Period),
			orderBy(filter, InvoiceSortFields, "created_at")).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	quotations := make([]quotation.Quotation, len(rows))
	for i := range rows {
		quotations[i] = *rows[i].ToDomain()
	}
	return quotations, nil
}

// Create inserts a quotation with its lines
func (r *GormQuotationRepository) Create(ctx context.Context, q *quotation.Quotation) error {
	model := &models.QuotationModel{}
	model.FromDomain(q)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	for i := range q.Items {
		q.Items[i].ID = model.Items[i].ID
	}
	return nil
}

// Save writes the mutable fields: total, status and timestamp. Lines never change.
func (r *GormQuotationRepository) Save(ctx context.Context, q *quotation.Quotation) error {
	result := r.db.WithContext(ctx).Model(&models.QuotationModel{}).
		Where("id = ?", q.ID).
		UpdateColumns(map[string]any{
			"total_amount": q.TotalAmount,
			"status":       string(q.Status),
			"updated_at":   q.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return quotation.QuotationNotFound(q.ID)
	}
	return nil
}

// Ensure GormQuotationRepository implements quotation.Repository
var _ quotation.Repository = (*GormQuotationRepository)(nil)
