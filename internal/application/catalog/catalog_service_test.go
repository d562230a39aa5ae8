package catalog

import (
	"context"
	"testing"

	"github.com/erp/invoicing/internal/domain/catalog"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uint) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter, categoryID *uint) ([]catalog.Product, error) {
	args := m.Called(ctx, filter, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	repo := new(MockCategoryRepository)
	repo.On("ExistsByName", ctx, "Motors").Return(false, nil).Once()
	repo.On("Save", ctx, mock.Anything).Return(nil)
	resp, err := NewCategoryService(repo).Create(ctx, CreateCategoryRequest{Name: " Motors "})
	require.NoError(t, err)
	assert.Equal(t, "Motors", resp.Name)

	repo.On("ExistsByName", ctx, "Motors").Return(true, nil).Once()
	_, err = NewCategoryService(repo).Create(ctx, CreateCategoryRequest{Name: "Motors"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	categories := new(MockCategoryRepository)
	products := new(MockProductRepository)
	categories.On("FindByID", ctx, uint(2)).Return(&catalog.Category{BaseEntity: shared.BaseEntity{ID: 2}, Name: "Gearboxes"}, nil)
	categories.On("FindByID", ctx, uint(9)).Return(nil, catalog.ErrCategoryNotFound)
	products.On("Save", ctx, mock.Anything).Return(nil)

	svc := NewProductService(products, categories)
	resp, err := svc.Create(ctx, CreateProductRequest{Title: "Helical Gearbox", CategoryID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Gearboxes", resp.CategoryName)

	_, err = svc.Create(ctx, CreateProductRequest{Title: "Helical Gearbox", CategoryID: 9})
	assert.ErrorIs(t, err, catalog.ErrCategoryNotFound)
	products.AssertNumberOfCalls(t, "Save", 1)
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	products := new(MockProductRepository)
	cat := uint(2)
	products.On("FindAll", ctx, mock.Anything, &cat).Return([]catalog.Product{{Title: "A"}}, nil)

	list, err := NewProductService(products, new(MockCategoryRepository)).List(ctx, &cat)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Uncategorized", list[0].CategoryName)
}
