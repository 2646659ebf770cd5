package catalog

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MockProductRepository is a mock implementation of ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByNames(ctx context.Context, userID uuid.UUID, names []string) ([]catalog.Product, error) {
	args := m.Called(ctx, userID, names)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockProductRepository) HasLineItems(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockBalanceRepository is a mock implementation of BalanceRepository
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetOrCreate(ctx context.Context, productID, companyID uuid.UUID, today time.Time) (*inventory.ProductCompany, error) {
	args := m.Called(ctx, productID, companyID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductCompany), args.Error(1)
}

func (m *MockBalanceRepository) Save(ctx context.Context, balance *inventory.ProductCompany) error {
	args := m.Called(ctx, balance)
	return args.Error(0)
}

func (m *MockBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductCompany, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.ProductCompany), args.Error(1)
}

// MockImageStorage is a mock implementation of ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockImageStorage) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (m *MockImageStorage) DeleteObject(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func createTestProduct(userID uuid.UUID) *catalog.Product {
	p, _ := catalog.NewProduct(userID, "Zep 45", "8471.30", "https://img.example.com/zep.png")
	return p
}

func newTestProductService() (*ProductService, *MockProductRepository, *MockBalanceRepository) {
	products := new(MockProductRepository)
	balances := new(MockBalanceRepository)
	return NewProductService(products, balances, zap.NewNop()), products, balances
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("starts with zero stock", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		repo.On("ExistsByName", ctx, "Zep 45").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := service.Create(ctx, userID, CreateProductRequest{Name: "Zep 45", CustomsCode: "8471.30", ImgURL: "https://img/x.png"})

		require.NoError(t, err)
		assert.True(t, resp.Stock.IsZero())
		assert.Equal(t, userID, resp.UserID)
	})

	t.Run("duplicate name", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		repo.On("ExistsByName", ctx, "Zep 45").Return(true, nil)

		_, err := service.Create(ctx, userID, CreateProductRequest{Name: "Zep 45", CustomsCode: "8471.30", ImgURL: "https://img/x.png"})

		assert.EqualError(t, err, "A product of this name already exists.")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("unique violation on save maps to duplicate", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		repo.On("ExistsByName", ctx, "Zep 45").Return(false, nil)
		repo.On("Save", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := service.Create(ctx, userID, CreateProductRequest{Name: "Zep 45", CustomsCode: "8471.30", ImgURL: "https://img/x.png"})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, CodeDuplicateName, de.Code)
	})
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("stock is preserved", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		product := createTestProduct(userID)
		product.Stock = decimal.NewFromInt(12)
		code := "9999.00"

		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		repo.On("Save", ctx, product).Return(nil)

		resp, err := service.Update(ctx, userID, product.ID, UpdateProductRequest{CustomsCode: &code})

		require.NoError(t, err)
		assert.Equal(t, "9999.00", resp.CustomsCode)
		assert.True(t, resp.Stock.Equal(decimal.NewFromInt(12)))
	})

	t.Run("rename to taken name", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		product := createTestProduct(userID)
		name := "Big Orange"

		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		repo.On("ExistsByName", ctx, name).Return(true, nil)

		_, err := service.Update(ctx, userID, product.ID, UpdateProductRequest{Name: &name})

		assert.EqualError(t, err, "A product of this name already exists.")
	})

	t.Run("not found", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		id := uuid.New()
		repo.On("FindByID", ctx, userID, id).Return(nil, shared.ErrNotFound)

		_, err := service.Update(ctx, userID, id, UpdateProductRequest{})

		assert.EqualError(t, err, "Product of ID: "+id.String()+" not found.")
	})
}

func TestProductService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("refuses product with line items", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		product := createTestProduct(userID)
		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		repo.On("HasLineItems", ctx, product.ID).Return(true, nil)

		_, err := service.Delete(ctx, userID, product.ID)

		assert.ErrorIs(t, err, shared.ErrInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deletes unused product", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		product := createTestProduct(userID)
		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		repo.On("HasLineItems", ctx, product.ID).Return(false, nil)
		repo.On("Delete", ctx, userID, product.ID).Return(nil)

		name, err := service.Delete(ctx, userID, product.ID)

		require.NoError(t, err)
		assert.Equal(t, "Zep 45", name)
	})

	t.Run("line item added after the check hits the foreign key", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		product := createTestProduct(userID)
		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		repo.On("HasLineItems", ctx, product.ID).Return(false, nil)
		repo.On("Delete", ctx, userID, product.ID).Return(shared.ErrInUse)

		_, err := service.Delete(ctx, userID, product.ID)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "IN_USE", de.Code)
		assert.Equal(t, "Product: Zep 45 is referenced by existing line items and cannot be deleted.", de.Message)
	})
}

func TestProductService_UploadImage(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	body := []byte("\x89PNG fake")

	t.Run("storage not configured", func(t *testing.T) {
		service, _, _ := newTestProductService()

		_, err := service.UploadImage(ctx, userID, uuid.New(), ImageUpload{ContentType: "image/png", Size: 3, Body: bytes.NewReader(body)})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, CodeStorageDisabled, de.Code)
	})

	t.Run("rejects svg", func(t *testing.T) {
		service, _, _ := newTestProductService()
		service.SetImageStorage(new(MockImageStorage), 0)

		_, err := service.UploadImage(ctx, userID, uuid.New(), ImageUpload{ContentType: "image/svg+xml", Size: 3, Body: bytes.NewReader(body)})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, CodeInvalidImage, de.Code)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		service, _, _ := newTestProductService()
		service.SetImageStorage(new(MockImageStorage), 4)

		_, err := service.UploadImage(ctx, userID, uuid.New(), ImageUpload{ContentType: "image/png", Size: 5, Body: bytes.NewReader(body)})

		assert.EqualError(t, err, "Image exceeds the maximum size of 4 bytes.")
	})

	t.Run("uploads and sets img_url", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		images := new(MockImageStorage)
		service.SetImageStorage(images, 0)
		product := createTestProduct(userID)

		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		images.On("Upload", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "products/"+product.ID.String()+"/") && strings.HasSuffix(key, ".png")
		}), mock.Anything, int64(len(body)), "image/png").Return(nil)
		repo.On("Save", ctx, product).Return(nil)

		resp, err := service.UploadImage(ctx, userID, product.ID, ImageUpload{ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)})

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(resp.ImgURL, "https://cdn.example.com/products/"))
		images.AssertExpectations(t)
	})

	t.Run("removes object when save fails", func(t *testing.T) {
		service, repo, _ := newTestProductService()
		images := new(MockImageStorage)
		service.SetImageStorage(images, 0)
		product := createTestProduct(userID)
		dbErr := errors.New("db down")

		repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
		images.On("Upload", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
		repo.On("Save", ctx, product).Return(dbErr)
		images.On("DeleteObject", ctx, mock.Anything).Return(nil)

		_, err := service.UploadImage(ctx, userID, product.ID, ImageUpload{ContentType: "image/png", Size: int64(len(body)), Body: bytes.NewReader(body)})

		assert.ErrorIs(t, err, dbErr)
		images.AssertCalled(t, "DeleteObject", ctx, mock.Anything)
	})
}

func TestProductService_Balances(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	service, repo, balances := newTestProductService()
	product := createTestProduct(userID)

	row := inventory.NewProductCompany(product.ID, uuid.New(), time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC))
	row.TotalQuantityBought = decimal.NewFromInt(48)
	row.TotalQuantitySupplied = decimal.NewFromInt(8)

	repo.On("FindByID", ctx, userID, product.ID).Return(product, nil)
	balances.On("FindByProduct", ctx, product.ID).Return([]inventory.ProductCompany{*row}, nil)

	out, err := service.Balances(ctx, userID, product.ID)

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Net.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, "2025-02-07", out[0].LastTransactionDate)
}

func TestCheckProductUpdateFields(t *testing.T) {
	assert.NoError(t, CheckProductUpdateFields([]string{"name", "img_url"}))
	assert.EqualError(t, CheckProductUpdateFields([]string{"stock"}), "Invalid field(s): stock.")
}
