package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/wzledger/backend/internal/application/catalog"
	identityapp "github.com/wzledger/backend/internal/application/identity"
	ledgerapp "github.com/wzledger/backend/internal/application/ledger"
	partnerapp "github.com/wzledger/backend/internal/application/partner"
	"github.com/wzledger/backend/internal/infrastructure/auth"
	"github.com/wzledger/backend/internal/infrastructure/config"
	"github.com/wzledger/backend/internal/infrastructure/persistence"
	"github.com/wzledger/backend/internal/interfaces/http/handler"
	"github.com/wzledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const maxImageBytes = 1 << 20

// TestServer is the full HTTP stack wired to a real database
type TestServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Images *ImageStore
}

// NewTestServer builds the production engine on top of a fresh database
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	gin.SetMode(gin.TestMode)
	testDB := NewTestDB(t)
	log := zap.NewNop()

	userRepo := persistence.NewGormUserRepository(testDB.DB)
	companyRepo := persistence.NewGormCompanyRepository(testDB.DB)
	productRepo := persistence.NewGormProductRepository(testDB.DB)
	balanceRepo := persistence.NewGormBalanceRepository(testDB.DB)
	entryRepo := persistence.NewGormEntryRepository(testDB.DB)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "integration-secret-key-32-chars!!",
		RefreshSecret:          "integration-refresh-key-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "wzledger-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()

	images := NewImageStore("http://images.test")
	productService := catalogapp.NewProductService(productRepo, balanceRepo, log)
	productService.SetImageStorage(images, maxImageBytes)

	entryService := ledgerapp.NewEntryService(
		entryRepo,
		ledgerapp.NewResolver(entryRepo, companyRepo, productRepo),
		persistence.NewGormTransactionScope(testDB.DB),
		log,
	)

	engine := router.NewEngine(t.Context(), router.EngineConfig{
		Env:           "test",
		ServiceName:   "wzledger-integration",
		HTTP:          config.HTTPConfig{MaxBodySize: 1 << 20},
		MaxImageBytes: maxImageBytes,
	}, router.Dependencies{
		Logger:    log,
		JWT:       jwtService,
		Blacklist: blacklist,
		Users:     userRepo,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(identityapp.NewAuthService(userRepo, jwtService, blacklist, log)),
		Entries:   handler.NewEntryHandler(entryService),
		Companies: handler.NewCompanyHandler(partnerapp.NewCompanyService(companyRepo, log)),
		Products:  handler.NewProductHandler(productService),
		Health:    handler.NewHealthHandler(&persistence.Database{DB: testDB.DB}, "integration"),
	})

	return &TestServer{DB: testDB, Engine: engine, Images: images}
}

// Request sends a JSON request, authenticated when token is set
func (ts *TestServer) Request(method, path, token string, body any) *httptest.ResponseRecorder {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// Upload sends a multipart image upload
func (ts *TestServer) Upload(t *testing.T, path, token, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+handler.ImageFormField+`"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

// Register creates an account and returns its access token
func (ts *TestServer) Register(t *testing.T, email string) string {
	t.Helper()

	w := ts.Request(http.MethodPost, "/auth/register", "", map[string]string{
		"name":     "Integration",
		"email":    email,
		"password": "correct-horse-battery",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result identityapp.AuthResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result.Token.AccessToken
}

// Decode unmarshals a response body into out
func Decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// ErrorOf returns the "error" field of a response body
func ErrorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	Decode(t, w, &body)
	return body["error"]
}
