package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seedTime = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

// setupTestDB creates a migrated in-memory SQLite database. A single
// connection keeps every session on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type seeded struct {
	categoryID uint
	productID  uint
	stockID    uint
	customerID uint
}

// seedCatalog inserts one fan category, product, stock row of qty units and a customer
func seedCatalog(t *testing.T, db *gorm.DB, qty int) seeded {
	t.Helper()
	category := &models.CategoryModel{BaseModel: models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime}, Name: "Fans", Status: "ACTIVE"}
	require.NoError(t, db.Create(category).Error)
	product := &models.ProductModel{BaseModel: models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime}, Title: "Ceiling Fan", CategoryID: category.ID, Status: "ACTIVE"}
	require.NoError(t, db.Create(product).Error)
	stock := &models.StockModel{
		BaseModel:    models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime},
		ProductID:    product.ID,
		BuyingPrice:  decimal.NewFromInt(60),
		SellingPrice: decimal.NewFromInt(100),
		Qty:          qty,
		Status:       "ACTIVE",
	}
	require.NoError(t, db.Create(stock).Error)
	customer := &models.CustomerModel{BaseModel: models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime}, Name: "Perera Electricals", Email: "accounts@perera.lk", Status: "ACTIVE"}
	require.NoError(t, db.Create(customer).Error)
	return seeded{categoryID: category.ID, productID: product.ID, stockID: stock.ID, customerID: customer.ID}
}

// newMockDB opens gorm over sqlmock with the postgres dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock, mockDB
}
