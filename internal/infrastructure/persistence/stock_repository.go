package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/erp/invoicing/internal/domain/inventory"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByID finds a stock row with its product and category
func (r *GormStockRepository) FindByID(ctx context.Context, id uint) (*inventory.Stock, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a stock row holding SELECT ... FOR UPDATE until the transaction ends
func (r *GormStockRepository) FindByIDForUpdate(ctx context.Context, id uint) (*inventory.Stock, error) {
	return r.find(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormStockRepository) find(db *gorm.DB, id uint) (*inventory.Stock, error) {
	var model models.StockModel
	if err := db.Preload("Product.Category").First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, inventory.StockNotFound(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists stock rows narrowed by query
func (r *GormStockRepository) FindAll(ctx context.Context, query inventory.StockQuery) ([]inventory.Stock, error) {
	db := r.db.WithContext(ctx).Preload("Product.Category").
		Scopes(visible(query.Visibility)).
		Order("id ASC")
	if query.CategoryID != nil {
		db = db.Where("product_id IN (?)",
			r.db.Model(&models.ProductModel{}).Select("id").Where("category_id = ?", *query.CategoryID))
	}
	if query.VendorID != nil {
		db = db.Where("vendor_id = ?", *query.VendorID)
	}
	var rows []models.StockModel
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	stocks := make([]inventory.Stock, len(rows))
	for i := range rows {
		stocks[i] = *rows[i].ToDomain()
	}
	return stocks, nil
}

// FindSameLot returns the active row with the same product, vendor and prices, or nil
func (r *GormStockRepository) FindSameLot(ctx context.Context, details inventory.StockDetails) (*inventory.Stock, error) {
	db := r.db.WithContext(ctx).
		Where("product_id = ? AND buying_price = ? AND selling_price = ? AND status = ?",
			details.ProductID, details.BuyingPrice, details.SellingPrice, string(shared.StatusActive))
	if details.VendorID == nil {
		db = db.Where("vendor_id IS NULL")
	} else {
		db = db.Where("vendor_id = ?", *details.VendorID)
	}
	var model models.StockModel
	if err := db.Order("id ASC").First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a stock row without touching its product
func (r *GormStockRepository) Save(ctx context.Context, stock *inventory.Stock) error {
	model := &models.StockModel{}
	model.FromDomain(stock)
	if err := r.db.WithContext(ctx).Omit("Product").Save(model).Error; err != nil {
		return err
	}
	stock.ID = model.ID
	return nil
}

// Decrement subtracts qty in one guarded UPDATE. The WHERE clause keeps the
// quantity from going negative even without a prior row lock.
func (r *GormStockRepository) Decrement(ctx context.Context, id uint, qty int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.StockModel{}).
		Where("id = ? AND qty >= ?", id, qty).
		UpdateColumns(map[string]any{
			"qty":        gorm.Expr("qty - ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// Increment adds qty
func (r *GormStockRepository) Increment(ctx context.Context, id uint, qty int) error {
	result := r.db.WithContext(ctx).Model(&models.StockModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"qty":        gorm.Expr("qty + ?", qty),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.StockNotFound(id)
	}
	return nil
}

// UpdateStatus sets the ACTIVE/INACTIVE flag of a row
func (r *GormStockRepository) UpdateStatus(ctx context.Context, id uint, status shared.RecordStatus) error {
	result := r.db.WithContext(ctx).Model(&models.StockModel{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return inventory.StockNotFound(id)
	}
	return nil
}

// Ensure GormStockRepository implements StockRepository
var _ inventory.StockRepository = (*GormStockRepository)(nil)
