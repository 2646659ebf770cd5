package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/shared"
)

// Product represents a stockable item owned by a user.
// Stock only moves through entries, never through a direct edit.
type Product struct {
	shared.BaseEntity
	UserID      uuid.UUID
	Name        string
	Stock       decimal.Decimal
	CustomsCode string
	ImgURL      string
}

// ProductUpdate carries the editable product fields. Nil means unchanged.
type ProductUpdate struct {
	Name        *string
	CustomsCode *string
	ImgURL      *string
}

// NewProduct creates a product with zero stock
func NewProduct(userID uuid.UUID, name, customsCode, imgURL string) (*Product, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Product owner cannot be empty")
	}

	p := &Product{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		Stock:       decimal.Zero,
		CustomsCode: strings.TrimSpace(customsCode),
		ImgURL:      strings.TrimSpace(imgURL),
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Apply applies a partial update to the product
func (p *Product) Apply(u ProductUpdate) error {
	next := *p
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.CustomsCode != nil {
		next.CustomsCode = strings.TrimSpace(*u.CustomsCode)
	}
	if u.ImgURL != nil {
		next.ImgURL = strings.TrimSpace(*u.ImgURL)
	}
	if err := next.validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now()
	*p = next
	return nil
}

// SetImage points the product at a stored image
func (p *Product) SetImage(url string) {
	p.ImgURL = url
	p.UpdatedAt = time.Now()
}

// OwnedBy reports whether the product belongs to the user
func (p *Product) OwnedBy(userID uuid.UUID) bool {
	return p.UserID == userID
}

// IncreaseStock adds a positive quantity to stock
func (p *Product) IncreaseStock(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	p.Stock = p.Stock.Add(quantity)
	p.UpdatedAt = time.Now()
	return nil
}

// DeductStock removes a positive quantity from stock. Stock never goes negative.
func (p *Product) DeductStock(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Stock.LessThan(quantity) {
		return shared.ErrInsufficientStock
	}
	p.Stock = p.Stock.Sub(quantity)
	p.UpdatedAt = time.Now()
	return nil
}

func (p *Product) validate() error {
	if p.Name == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Name cannot be empty.")
	}
	if len(p.Name) > 250 {
		return shared.NewDomainError("INVALID_PRODUCT", "Name cannot exceed 250 characters.")
	}
	if p.CustomsCode == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Customs_code cannot be empty.")
	}
	if p.ImgURL == "" {
		return shared.NewDomainError("INVALID_PRODUCT", "Img_url cannot be empty.")
	}
	return nil
}
