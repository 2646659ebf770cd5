package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/wzledger/backend/internal/application/catalog"
)

// ImageFormField is the multipart field carrying a product image
const ImageFormField = "image"

// ProductUseCases is the catalog surface used by ProductHandler
type ProductUseCases interface {
	Create(ctx context.Context, userID uuid.UUID, req catalogapp.CreateProductRequest) (*catalogapp.ProductResponse, error)
	GetByID(ctx context.Context, userID, productID uuid.UUID) (*catalogapp.ProductResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]catalogapp.ProductResponse, error)
	Update(ctx context.Context, userID, productID uuid.UUID, req catalogapp.UpdateProductRequest) (*catalogapp.ProductResponse, error)
	Delete(ctx context.Context, userID, productID uuid.UUID) (string, error)
	UploadImage(ctx context.Context, userID, productID uuid.UUID, upload catalogapp.ImageUpload) (*catalogapp.ProductResponse, error)
	Balances(ctx context.Context, userID, productID uuid.UUID) ([]catalogapp.BalanceResponse, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	BaseHandler
	products ProductUseCases
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductUseCases) *ProductHandler {
	return &ProductHandler{products: products}
}

// ProductEnvelope wraps a single product in responses
type ProductEnvelope struct {
	Product catalogapp.ProductResponse `json:"product"`
}

// List returns the user's products
// GET /api/v1/products
func (h *ProductHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	products, err := h.products.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetByID returns one product
// GET /api/v1/products/:id
func (h *ProductHandler) GetByID(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", catalogapp.ProductNotFound)
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductEnvelope{Product: *product})
}

// Create creates a product with zero stock
// POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req catalogapp.CreateProductRequest
	if !h.bindJSON(c, &req) {
		return
	}

	product, err := h.products.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fmt.Sprintf("Successfully created a new product: %s!", product.Name))
}

// Update applies a partial update. Stock cannot be set here.
// PATCH /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", catalogapp.ProductNotFound)
	if !ok {
		return
	}

	var req catalogapp.UpdateProductRequest
	if !h.bindPatch(c, catalogapp.CheckProductUpdateFields, &req) {
		return
	}

	product, err := h.products.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductEnvelope{Product: *product})
}

// Delete removes a product no line item references
// DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", catalogapp.ProductNotFound)
	if !ok {
		return
	}

	name, err := h.products.Delete(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fmt.Sprintf("Successfully deleted the product: %s.", name))
}

// UploadImage stores a product image and points img_url at it
// POST /api/v1/products/:id/image
func (h *ProductHandler) UploadImage(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", catalogapp.ProductNotFound)
	if !ok {
		return
	}

	header, err := c.FormFile(ImageFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, "Request body exceeds maximum allowed size.")
			return
		}
		h.BadRequest(c, fmt.Sprintf("Missing image file in form field %q.", ImageFormField))
		return
	}

	file, err := header.Open()
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer file.Close()

	product, err := h.products.UploadImage(c.Request.Context(), userID, id, catalogapp.ImageUpload{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductEnvelope{Product: *product})
}

// Balances lists the per-company ledger rows of a product
// GET /api/v1/products/:id/balances
func (h *ProductHandler) Balances(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", catalogapp.ProductNotFound)
	if !ok {
		return
	}

	rows, err := h.products.Balances(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
