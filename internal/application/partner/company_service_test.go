package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// MockCompanyRepository is a mock implementation of CompanyRepository
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
	args := m.Called(ctx, company)
	return args.Error(0)
}

func (m *MockCompanyRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockCompanyRepository) HasEntries(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func createTestCompany(userID uuid.UUID) *partner.Company {
	c, _ := partner.NewCompany(userID, "TaoO'Clock", "12 Harbour Rd", "Anna Nowak", "+48 600 100 200")
	return c
}

func TestCompanyService_Create(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("creates company", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())

		repo.On("ExistsByName", ctx, userID, "Acme").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Company")).Return(nil)

		resp, err := service.Create(ctx, userID, CreateCompanyRequest{
			Name:          " Acme ",
			Address:       "1 Main St",
			ContactNumber: "123",
		})

		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.Name)
		assert.Equal(t, userID, resp.UserID)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())

		repo.On("ExistsByName", ctx, userID, "Acme").Return(true, nil)

		_, err := service.Create(ctx, userID, CreateCompanyRequest{Name: "Acme", Address: "x", ContactNumber: "1"})

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, CodeDuplicateName, de.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects blank address", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())

		_, err := service.Create(ctx, userID, CreateCompanyRequest{Name: "Acme", Address: "  ", ContactNumber: "1"})

		assert.EqualError(t, err, "Address cannot be empty.")
		repo.AssertNotCalled(t, "ExistsByName", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCompanyService_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	userID, id := uuid.New(), uuid.New()
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, zap.NewNop())

	repo.On("FindByID", ctx, userID, id).Return(nil, shared.ErrNotFound)

	_, err := service.GetByID(ctx, userID, id)

	assert.EqualError(t, err, "Company of ID: "+id.String()+" not found.")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompanyService_List(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	repo := new(MockCompanyRepository)
	service := NewCompanyService(repo, zap.NewNop())

	repo.On("FindAll", ctx, userID).Return([]partner.Company{*createTestCompany(userID)}, nil)

	list, err := service.List(ctx, userID)

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "TaoO'Clock", list[0].Name)
}

func TestCompanyService_Update(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("renames company", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)
		newName := "Tao Ltd"

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("ExistsByName", ctx, userID, newName).Return(false, nil)
		repo.On("Save", ctx, company).Return(nil)

		resp, err := service.Update(ctx, userID, company.ID, UpdateCompanyRequest{Name: &newName})

		require.NoError(t, err)
		assert.Equal(t, newName, resp.Name)
		assert.Equal(t, "12 Harbour Rd", resp.Address)
	})

	t.Run("same name skips uniqueness check", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)
		sameName := company.Name

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("Save", ctx, company).Return(nil)

		_, err := service.Update(ctx, userID, company.ID, UpdateCompanyRequest{Name: &sameName})

		require.NoError(t, err)
		repo.AssertNotCalled(t, "ExistsByName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("blank contact number leaves company unchanged", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)
		blank := ""

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)

		_, err := service.Update(ctx, userID, company.ID, UpdateCompanyRequest{ContactNumber: &blank})

		assert.EqualError(t, err, "Contact_number cannot be empty.")
		assert.Equal(t, "+48 600 100 200", company.ContactNumber)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCompanyService_Delete(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("deletes unused company", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("HasEntries", ctx, company.ID).Return(false, nil)
		repo.On("Delete", ctx, userID, company.ID).Return(nil)

		name, err := service.Delete(ctx, userID, company.ID)

		require.NoError(t, err)
		assert.Equal(t, "TaoO'Clock", name)
	})

	t.Run("refuses company with entries", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("HasEntries", ctx, company.ID).Return(true, nil)

		_, err := service.Delete(ctx, userID, company.ID)

		assert.ErrorIs(t, err, shared.ErrInUse)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("entry added after the check hits the foreign key", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)
		fkErr := shared.NewDomainErrorWithCause(shared.ErrInUse.Code, shared.ErrInUse.Message, errors.New("violates foreign key constraint"))

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("HasEntries", ctx, company.ID).Return(false, nil)
		repo.On("Delete", ctx, userID, company.ID).Return(fkErr)

		_, err := service.Delete(ctx, userID, company.ID)

		de, ok := shared.AsDomainError(err)
		require.True(t, ok)
		assert.Equal(t, "IN_USE", de.Code)
		assert.Equal(t, "Company: TaoO'Clock is referenced by existing entries and cannot be deleted.", de.Message)
	})

	t.Run("propagates repository error", func(t *testing.T) {
		repo := new(MockCompanyRepository)
		service := NewCompanyService(repo, zap.NewNop())
		company := createTestCompany(userID)
		dbErr := errors.New("db down")

		repo.On("FindByID", ctx, userID, company.ID).Return(company, nil)
		repo.On("HasEntries", ctx, company.ID).Return(false, dbErr)

		_, err := service.Delete(ctx, userID, company.ID)

		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCheckCompanyUpdateFields(t *testing.T) {
	assert.NoError(t, CheckCompanyUpdateFields([]string{"name", "address"}))

	err := CheckCompanyUpdateFields([]string{"name", "user_id", "id"})
	assert.EqualError(t, err, "Invalid field(s): id, user_id.")
}
