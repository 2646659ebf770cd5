package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/wzledger/backend/internal/application/catalog"
	identityapp "github.com/wzledger/backend/internal/application/identity"
	ledgerapp "github.com/wzledger/backend/internal/application/ledger"
	partnerapp "github.com/wzledger/backend/internal/application/partner"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

func newTestUser() *identity.User {
	return &identity.User{
		BaseEntity: shared.BaseEntity{ID: uuid.New()},
		Name:       "Test User",
		Email:      "user@example.com",
	}
}

// newTestEngine returns an engine that authenticates every request as user
func newTestEngine(user *identity.User) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.JWTUserIDKey, user.ID.String())
			c.Set(middleware.CurrentUserKey, user)
		}
		c.Next()
	})
	return router
}

func doRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func assertErrorBody(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	require.Equal(t, map[string]any{"error": message}, decodeBody(t, w))
}

type mockEntryUseCases struct {
	mock.Mock
}

func (m *mockEntryUseCases) Create(ctx context.Context, user *identity.User, payload ledgerapp.Payload) (*ledgerapp.CreateEntryResult, error) {
	args := m.Called(ctx, user, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CreateEntryResult), args.Error(1)
}

func (m *mockEntryUseCases) GetEntry(ctx context.Context, userID, id uuid.UUID) (*ledgerapp.EntryResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.EntryResponse), args.Error(1)
}

func (m *mockEntryUseCases) ListEntries(ctx context.Context, userID uuid.UUID) ([]ledgerapp.EntryResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledgerapp.EntryResponse), args.Error(1)
}

type mockCompanyUseCases struct {
	mock.Mock
}

func (m *mockCompanyUseCases) Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

func (m *mockCompanyUseCases) GetByID(ctx context.Context, userID, companyID uuid.UUID) (*partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

func (m *mockCompanyUseCases) List(ctx context.Context, userID uuid.UUID) ([]partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partnerapp.CompanyResponse), args.Error(1)
}

func (m *mockCompanyUseCases) Update(ctx context.Context, userID, companyID uuid.UUID, req partnerapp.UpdateCompanyRequest) (*partnerapp.CompanyResponse, error) {
	args := m.Called(ctx, userID, companyID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partnerapp.CompanyResponse), args.Error(1)
}

func (m *mockCompanyUseCases) Delete(ctx context.Context, userID, companyID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, companyID)
	return args.String(0), args.Error(1)
}

type mockProductUseCases struct {
	mock.Mock
}

func (m *mockProductUseCases) Create(ctx context.Context, userID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductUseCases) GetByID(ctx context.Context, userID, productID uuid.UUID) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductUseCases) List(ctx context.Context, userID uuid.UUID) ([]catalogapp.ProductResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductUseCases) Update(ctx context.Context, userID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, userID, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductUseCases) Delete(ctx context.Context, userID, productID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID, productID)
	return args.String(0), args.Error(1)
}

func (m *mockProductUseCases) UploadImage(ctx context.Context, userID, productID uuid.UUID, upload catalogapp.ImageUpload) (*catalogapp.ProductResponse, error) {
	args := m.Called(ctx, userID, productID, upload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductResponse), args.Error(1)
}

func (m *mockProductUseCases) Balances(ctx context.Context, userID, productID uuid.UUID) ([]catalogapp.BalanceResponse, error) {
	args := m.Called(ctx, userID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalogapp.BalanceResponse), args.Error(1)
}

type mockAuthUseCases struct {
	mock.Mock
}

func (m *mockAuthUseCases) Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.AuthResult), args.Error(1)
}

func (m *mockAuthUseCases) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.AuthResult), args.Error(1)
}

func (m *mockAuthUseCases) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.TokenResponse), args.Error(1)
}

func (m *mockAuthUseCases) Logout(ctx context.Context, input identityapp.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthUseCases) Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identityapp.UserResponse), args.Error(1)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
