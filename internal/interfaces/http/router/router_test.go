package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
	assert.Empty(t, r.root)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	entries := NewDomainGroup("ledger", "/entries")
	entries.GET("", func(c *gin.Context) { c.String(http.StatusOK, "entries") })
	auth := NewDomainGroup("identity", "/auth")
	auth.POST("/login", func(c *gin.Context) { c.String(http.StatusOK, "login") })

	r.Register(entries).RegisterRoot(auth).Setup()

	w := serve(engine, http.MethodGet, "/api/v1/entries")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "entries", w.Body.String())

	w = serve(engine, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, "/api/v1/auth/login").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/entries").Code)
}

func TestDomainGroup_Methods(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("catalog", "/products")
	ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
	g.GET("/:id", ok).POST("", ok).PATCH("/:id", ok).DELETE("/:id", ok)
	g.RegisterRoutes(engine.Group("/api/v1"))

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/products/1"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPatch, "/api/v1/products/1"},
		{http.MethodDelete, "/api/v1/products/1"},
	}

	for _, tt := range tests {
		w := serve(engine, tt.method, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, "route %s %s", tt.method, tt.path)
		assert.Equal(t, tt.method, w.Body.String())
	}

	assert.Equal(t, "catalog", g.Name())
	assert.Equal(t, "/products", g.Prefix())
}

func TestDomainGroup_Middleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("test", "/test")
	g.Use(func(c *gin.Context) {
		c.Header("X-Test-Middleware", "applied")
		c.Next()
	})
	g.GET("/items", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	g.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/test/items")

	assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
}

func TestDomainGroup_EmptyPrefixSubgroups(t *testing.T) {
	engine := gin.New()
	products := NewDomainGroup("catalog", "/products")

	json := products.Group("catalog-json", "")
	json.Use(func(c *gin.Context) {
		c.Header("X-Limit", "json")
		c.Next()
	})
	json.GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, "get") })

	images := products.Group("catalog-images", "")
	images.Use(func(c *gin.Context) {
		c.Header("X-Limit", "image")
		c.Next()
	})
	images.POST("/:id/image", func(c *gin.Context) { c.String(http.StatusOK, "upload") })

	products.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, http.MethodGet, "/api/v1/products/1")
	assert.Equal(t, "get", w.Body.String())
	assert.Equal(t, "json", w.Header().Get("X-Limit"))

	w = serve(engine, http.MethodPost, "/api/v1/products/1/image")
	assert.Equal(t, "upload", w.Body.String())
	assert.Equal(t, "image", w.Header().Get("X-Limit"))
}
