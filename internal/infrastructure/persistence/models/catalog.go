package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/catalog"
)

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	BaseModel
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name        string          `gorm:"type:varchar(250);not null;uniqueIndex:idx_products_name"`
	Stock       decimal.Decimal `gorm:"type:numeric(18,4);not null;default:0"`
	CustomsCode string          `gorm:"type:varchar(250);not null"`
	ImgURL      string          `gorm:"type:varchar(500);not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseEntity:  m.BaseModel.ToDomain(),
		UserID:      m.UserID,
		Name:        m.Name,
		Stock:       m.Stock,
		CustomsCode: m.CustomsCode,
		ImgURL:      m.ImgURL,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.UserID = p.UserID
	m.Name = p.Name
	m.Stock = p.Stock
	m.CustomsCode = p.CustomsCode
	m.ImgURL = p.ImgURL
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
