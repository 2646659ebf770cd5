package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/inventory"
)

// ProductCompanyModel is the persistence model for a product/company balance.
// There is at most one row per pair.
type ProductCompanyModel struct {
	BaseModel
	ProductID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_company_pair,priority:1"`
	CompanyID             uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_company_pair,priority:2;index"`
	TotalQuantityBought   decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	TotalQuantitySupplied decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	LastTransactionDate   string          `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (ProductCompanyModel) TableName() string {
	return "product_company"
}

// ToDomain converts the persistence model to a domain ProductCompany.
func (m *ProductCompanyModel) ToDomain() *inventory.ProductCompany {
	return &inventory.ProductCompany{
		BaseEntity:            m.BaseModel.ToDomain(),
		ProductID:             m.ProductID,
		CompanyID:             m.CompanyID,
		TotalQuantityBought:   m.TotalQuantityBought,
		TotalQuantitySupplied: m.TotalQuantitySupplied,
		LastTransactionDate:   m.LastTransactionDate,
	}
}

// ProductCompanyModelFromDomain creates a new persistence model from a domain ProductCompany.
func ProductCompanyModelFromDomain(pc *inventory.ProductCompany) *ProductCompanyModel {
	m := &ProductCompanyModel{
		ProductID:             pc.ProductID,
		CompanyID:             pc.CompanyID,
		TotalQuantityBought:   pc.TotalQuantityBought,
		TotalQuantitySupplied: pc.TotalQuantitySupplied,
		LastTransactionDate:   pc.LastTransactionDate,
	}
	m.FromDomainBaseEntity(pc.BaseEntity)
	return m
}

// All returns every model in dependency order, for AutoMigrate in tests
func All() []any {
	return []any{
		&UserModel{},
		&CompanyModel{},
		&ProductModel{},
		&EntryModel{},
		&LineItemModel{},
		&ProductCompanyModel{},
	}
}
