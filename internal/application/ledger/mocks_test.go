package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/partner"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) CreateLineItem(ctx context.Context, item *ledger.LineItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockEntryRepository) ExistsByDocumentNr(ctx context.Context, documentNr string) (bool, error) {
	args := m.Called(ctx, documentNr)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockEntryRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

type MockCompanyRepository struct {
	mock.Mock
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*partner.Company, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*partner.Company, error) {
	args := m.Called(ctx, userID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Company), args.Error(1)
}

func (m *MockCompanyRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]partner.Company, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]partner.Company), args.Error(1)
}

func (m *MockCompanyRepository) ExistsByName(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	args := m.Called(ctx, userID, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockCompanyRepository) HasEntries(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
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
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) UpdateStock(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockProductRepository) HasLineItems(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

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
	return m.Called(ctx, balance).Error(0)
}

func (m *MockBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductCompany, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]inventory.ProductCompany), args.Error(1)
}

// recordingMetrics captures metric calls
type recordingMetrics struct {
	created  []string
	rejected []string
}

func (r *recordingMetrics) RecordEntryCreated(_ context.Context, txType string, _ int) {
	r.created = append(r.created, txType)
}

func (r *recordingMetrics) RecordEntryRejected(_ context.Context, code string) {
	r.rejected = append(r.rejected, code)
}
