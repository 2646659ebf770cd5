package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/wzledger/backend/internal/application/catalog"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/shared"
)

func setupProductRouter(user *identity.User) (*gin.Engine, *mockProductUseCases) {
	svc := new(mockProductUseCases)
	h := NewProductHandler(svc)
	router := newTestEngine(user)
	router.GET("/products", h.List)
	router.POST("/products", h.Create)
	router.GET("/products/:id", h.GetByID)
	router.PATCH("/products/:id", h.Update)
	router.DELETE("/products/:id", h.Delete)
	router.POST("/products/:id/image", h.UploadImage)
	router.GET("/products/:id/balances", h.Balances)
	return router, svc
}

func newImageRequest(t *testing.T, path, field, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="widget.png"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProductHandler_List(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	svc.On("List", mock.Anything, user.ID).Return([]catalogapp.ProductResponse{
		{ID: uuid.New(), Name: "Widget", Stock: decimal.NewFromInt(5)},
	}, nil)

	w := doRequest(router, http.MethodGet, "/products", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stock":"5"`)
}

func TestProductHandler_GetByID(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	svc.On("GetByID", mock.Anything, user.ID, id).Return(&catalogapp.ProductResponse{ID: id, Name: "Widget"}, nil)

	w := doRequest(router, http.MethodGet, "/products/"+id.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	product := decodeBody(t, w)["product"].(map[string]any)
	assert.Equal(t, "Widget", product["name"])
}

func TestProductHandler_GetByID_MalformedID(t *testing.T) {
	router, _ := setupProductRouter(newTestUser())

	w := doRequest(router, http.MethodGet, "/products/7", nil)

	assertErrorBody(t, w, http.StatusNotFound, "Product of ID: 7 not found.")
}

func TestProductHandler_Create(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	req := catalogapp.CreateProductRequest{Name: "Widget", CustomsCode: "8471", ImgURL: "https://img.example.com/w.png"}
	svc.On("Create", mock.Anything, user.ID, req).Return(&catalogapp.ProductResponse{ID: uuid.New(), Name: "Widget"}, nil)

	w := doRequest(router, http.MethodPost, "/products", req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]any{"success": "Successfully created a new product: Widget!"}, decodeBody(t, w))
}

func TestProductHandler_Create_Duplicate(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	svc.On("Create", mock.Anything, user.ID, mock.Anything).
		Return(nil, shared.NewDomainError(catalogapp.CodeDuplicateName, "A product of this name already exists."))

	w := doRequest(router, http.MethodPost, "/products", catalogapp.CreateProductRequest{Name: "Widget", CustomsCode: "1", ImgURL: "u"})

	assertErrorBody(t, w, http.StatusBadRequest, "A product of this name already exists.")
}

func TestProductHandler_Update_RejectsStock(t *testing.T) {
	router, svc := setupProductRouter(newTestUser())

	w := doRequest(router, http.MethodPatch, "/products/"+uuid.NewString(), `{"stock": 100}`)

	assertErrorBody(t, w, http.StatusBadRequest, "Invalid field(s): stock.")
	svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_Update(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	svc.On("Update", mock.Anything, user.ID, id, mock.MatchedBy(func(r catalogapp.UpdateProductRequest) bool {
		return r.CustomsCode != nil && *r.CustomsCode == "9999" && r.Name == nil
	})).Return(&catalogapp.ProductResponse{ID: id, Name: "Widget", CustomsCode: "9999"}, nil)

	w := doRequest(router, http.MethodPatch, "/products/"+id.String(), `{"customs_code":"9999"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	product := decodeBody(t, w)["product"].(map[string]any)
	assert.Equal(t, "9999", product["customs_code"])
}

func TestProductHandler_Delete(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	svc.On("Delete", mock.Anything, user.ID, id).Return("Widget", nil)

	w := doRequest(router, http.MethodDelete, "/products/"+id.String(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"success": "Successfully deleted the product: Widget."}, decodeBody(t, w))
}

func TestProductHandler_UploadImage(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	data := []byte("\x89PNG fake image bytes")

	var received []byte
	svc.On("UploadImage", mock.Anything, user.ID, id, mock.MatchedBy(func(u catalogapp.ImageUpload) bool {
		return u.ContentType == "image/png" && u.Size == int64(len(data))
	})).Run(func(args mock.Arguments) {
		received, _ = io.ReadAll(args.Get(3).(catalogapp.ImageUpload).Body)
	}).Return(&catalogapp.ProductResponse{ID: id, Name: "Widget", ImgURL: "https://cdn.example.com/products/x.png"}, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newImageRequest(t, "/products/"+id.String()+"/image", ImageFormField, "image/png", data))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	product := decodeBody(t, w)["product"].(map[string]any)
	assert.Equal(t, "https://cdn.example.com/products/x.png", product["img_url"])
	assert.Equal(t, data, received)
}

func TestProductHandler_UploadImage_MissingField(t *testing.T) {
	router, svc := setupProductRouter(newTestUser())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newImageRequest(t, "/products/"+uuid.NewString()+"/image", "file", "image/png", []byte("x")))

	assertErrorBody(t, w, http.StatusBadRequest, `Missing image file in form field "image".`)
	svc.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_UploadImage_StorageDisabled(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	svc.On("UploadImage", mock.Anything, user.ID, id, mock.Anything).
		Return(nil, shared.NewDomainError(catalogapp.CodeStorageDisabled, "Image storage is not configured."))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newImageRequest(t, "/products/"+id.String()+"/image", ImageFormField, "image/png", []byte("x")))

	assertErrorBody(t, w, http.StatusServiceUnavailable, "Image storage is not configured.")
}

func TestProductHandler_Balances(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	companyID := uuid.New()
	svc.On("Balances", mock.Anything, user.ID, id).Return([]catalogapp.BalanceResponse{{
		ID:                    uuid.New(),
		ProductID:             id,
		CompanyID:             companyID,
		TotalQuantityBought:   decimal.NewFromInt(10),
		TotalQuantitySupplied: decimal.NewFromInt(4),
		Net:                   decimal.NewFromInt(6),
		LastTransactionDate:   "2024-01-15",
	}}, nil)

	w := doRequest(router, http.MethodGet, "/products/"+id.String()+"/balances", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"company_id":"`+companyID.String()+`"`)
	assert.Contains(t, w.Body.String(), `"net":"6"`)
}

func TestProductHandler_Balances_NotFound(t *testing.T) {
	user := newTestUser()
	router, svc := setupProductRouter(user)
	id := uuid.New()
	svc.On("Balances", mock.Anything, user.ID, id).Return(nil, catalogapp.ProductNotFound(id.String()))

	w := doRequest(router, http.MethodGet, "/products/"+id.String()+"/balances", nil)

	assertErrorBody(t, w, http.StatusNotFound, "Product of ID: "+id.String()+" not found.")
}
