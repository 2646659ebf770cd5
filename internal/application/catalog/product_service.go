package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Error codes produced by product operations
const (
	CodeProductMissing   = "NOT_FOUND"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeInvalidFields    = "INVALID_FIELDS"
	CodeInvalidImage     = "INVALID_IMAGE"
	CodeStorageFailed    = "STORAGE_FAILED"
	CodeStorageDisabled  = "STORAGE_DISABLED"
	defaultMaxImageBytes = 5 << 20
)

// AllowedImageTypes is the whitelist of product image content types.
// SVG is excluded because it can carry script.
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageStorage stores product images in object storage
type ImageStorage interface {
	// Upload writes the object under key
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// URL returns the address clients use to fetch the object
	URL(key string) string
	// DeleteObject removes the object
	DeleteObject(ctx context.Context, key string) error
}

// ImageUpload is a product image received from a client
type ImageUpload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProductService handles product-related business operations
type ProductService struct {
	productRepo   catalog.ProductRepository
	balanceRepo   inventory.BalanceRepository
	images        ImageStorage
	maxImageBytes int64
	logger        *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, balanceRepo inventory.BalanceRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		balanceRepo:   balanceRepo,
		maxImageBytes: defaultMaxImageBytes,
		logger:        logger,
	}
}

// SetImageStorage enables image uploads
func (s *ProductService) SetImageStorage(images ImageStorage, maxBytes int64) {
	s.images = images
	if maxBytes > 0 {
		s.maxImageBytes = maxBytes
	}
}

// Create creates a new product with zero stock
func (s *ProductService) Create(ctx context.Context, userID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(userID, req.Name, req.CustomsCode, req.ImgURL)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, product.Name); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	logger.L(ctx, s.logger).Info("New product added",
		zap.String("product_id", product.ID.String()),
		zap.String("name", product.Name))

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves one of the user's products
func (s *ProductService) GetByID(ctx context.Context, userID, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves all of the user's products
func (s *ProductService) List(ctx context.Context, userID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// Update applies a partial update. Stock cannot be changed here.
func (s *ProductService) Update(ctx context.Context, userID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != product.Name {
		if err := s.ensureNameFree(ctx, strings.TrimSpace(*req.Name)); err != nil {
			return nil, err
		}
	}

	if err := product.Apply(req.ToDomain()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, product); err != nil {
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Changes implemented for product", zap.String("product_id", product.ID.String()))

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product no line item references and returns its name
func (s *ProductService) Delete(ctx context.Context, userID, productID uuid.UUID) (string, error) {
	product, err := s.find(ctx, userID, productID)
	if err != nil {
		return "", err
	}

	inUse, err := s.productRepo.HasLineItems(ctx, product.ID)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", productInUse(product.Name)
	}

	if err := s.productRepo.Delete(ctx, userID, product.ID); err != nil {
		if errors.Is(err, shared.ErrInUse) {
			return "", productInUse(product.Name)
		}
		return "", err
	}

	logger.L(ctx, s.logger).Info("Product deleted", zap.String("product_id", product.ID.String()), zap.String("name", product.Name))
	return product.Name, nil
}

// UploadImage stores a new product image and points img_url at it
func (s *ProductService) UploadImage(ctx context.Context, userID, productID uuid.UUID, upload ImageUpload) (*ProductResponse, error) {
	if s.images == nil {
		return nil, shared.NewDomainError(CodeStorageDisabled, "Image storage is not configured.")
	}

	ext, ok := AllowedImageTypes[upload.ContentType]
	if !ok {
		return nil, shared.NewDomainError(CodeInvalidImage,
			fmt.Sprintf("Unsupported image type: %s. Allowed types are JPEG, PNG, GIF and WebP.", upload.ContentType))
	}
	if upload.Size <= 0 {
		return nil, shared.NewDomainError(CodeInvalidImage, "Image file is empty.")
	}
	if upload.Size > s.maxImageBytes {
		return nil, shared.NewDomainError(CodeInvalidImage,
			fmt.Sprintf("Image exceeds the maximum size of %d bytes.", s.maxImageBytes))
	}

	product, err := s.find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("products/%s/%s%s", product.ID, uuid.New(), ext)

	if err := s.images.Upload(ctx, key, upload.Body, upload.Size, upload.ContentType); err != nil {
		logger.L(ctx, s.logger).Error("Failed to upload product image",
			zap.String("product_id", product.ID.String()),
			zap.String("key", key),
			zap.Error(err))
		return nil, shared.NewDomainErrorWithCause(CodeStorageFailed, "Failed to store the image. Please try again later.", err)
	}

	product.SetImage(s.images.URL(key))
	if err := s.productRepo.Save(ctx, product); err != nil {
		if delErr := s.images.DeleteObject(ctx, key); delErr != nil {
			logger.L(ctx, s.logger).Warn("Failed to remove orphaned product image", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Product image uploaded",
		zap.String("product_id", product.ID.String()),
		zap.String("key", key))

	response := ToProductResponse(product)
	return &response, nil
}

// Balances lists the per-company ledger rows of one of the user's products
func (s *ProductService) Balances(ctx context.Context, userID, productID uuid.UUID) ([]BalanceResponse, error) {
	product, err := s.find(ctx, userID, productID)
	if err != nil {
		return nil, err
	}

	rows, err := s.balanceRepo.FindByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return ToBalanceResponses(rows), nil
}

func (s *ProductService) find(ctx context.Context, userID, productID uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ProductNotFound(productID.String())
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ensureNameFree(ctx context.Context, name string) error {
	exists, err := s.productRepo.ExistsByName(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return duplicateProduct()
	}
	return nil
}

func (s *ProductService) save(ctx context.Context, product *catalog.Product) error {
	if err := s.productRepo.Save(ctx, product); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return duplicateProduct()
		}
		return err
	}
	return nil
}

func productInUse(name string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInUse.Code,
		fmt.Sprintf("Product: %s is referenced by existing line items and cannot be deleted.", name))
}

func duplicateProduct() *shared.DomainError {
	return shared.NewDomainError(CodeDuplicateName, "A product of this name already exists.")
}

// ProductNotFound builds the not-found error for a product reference
func ProductNotFound(ref string) *shared.DomainError {
	return shared.NewDomainError(CodeProductMissing, fmt.Sprintf("Product of ID: %s not found.", ref))
}
