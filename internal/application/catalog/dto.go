package catalog

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/shared"
)

// ProductEditableFields lists the keys accepted by a product update. Stock is not among them.
var ProductEditableFields = []string{"name", "customs_code", "img_url"}

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=250"`
	CustomsCode string `json:"customs_code" binding:"required,notblank,max=250"`
	ImgURL      string `json:"img_url" binding:"required,notblank,max=500"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=250"`
	CustomsCode *string `json:"customs_code" binding:"omitempty,max=250"`
	ImgURL      *string `json:"img_url" binding:"omitempty,max=500"`
}

// ToDomain converts the request to a domain update
func (r UpdateProductRequest) ToDomain() catalog.ProductUpdate {
	return catalog.ProductUpdate{
		Name:        r.Name,
		CustomsCode: r.CustomsCode,
		ImgURL:      r.ImgURL,
	}
}

// CheckProductUpdateFields rejects keys that are not editable
func CheckProductUpdateFields(keys []string) error {
	var invalid []string
	for _, k := range keys {
		editable := false
		for _, f := range ProductEditableFields {
			if k == f {
				editable = true
				break
			}
		}
		if !editable {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return shared.NewDomainError(CodeInvalidFields, fmt.Sprintf("Invalid field(s): %s.", strings.Join(invalid, ", ")))
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Stock       decimal.Decimal `json:"stock"`
	CustomsCode string          `json:"customs_code"`
	ImgURL      string          `json:"img_url"`
	UserID      uuid.UUID       `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Stock:       p.Stock,
		CustomsCode: p.CustomsCode,
		ImgURL:      p.ImgURL,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of domain Products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// BalanceResponse is one product/company ledger row
type BalanceResponse struct {
	ID                    uuid.UUID       `json:"id"`
	ProductID             uuid.UUID       `json:"product_id"`
	CompanyID             uuid.UUID       `json:"company_id"`
	TotalQuantityBought   decimal.Decimal `json:"total_quantity_bought"`
	TotalQuantitySupplied decimal.Decimal `json:"total_quantity_supplied"`
	Net                   decimal.Decimal `json:"net"`
	LastTransactionDate   string          `json:"last_transaction_date"`
}

// ToBalanceResponses converts ledger rows for output
func ToBalanceResponses(rows []inventory.ProductCompany) []BalanceResponse {
	out := make([]BalanceResponse, len(rows))
	for i, r := range rows {
		out[i] = BalanceResponse{
			ID:                    r.ID,
			ProductID:             r.ProductID,
			CompanyID:             r.CompanyID,
			TotalQuantityBought:   r.TotalQuantityBought,
			TotalQuantitySupplied: r.TotalQuantitySupplied,
			Net:                   r.Net(),
			LastTransactionDate:   r.LastTransactionDate,
		}
	}
	return out
}
