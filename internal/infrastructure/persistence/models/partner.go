package models

import (
	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/partner"
)

// CompanyModel is the persistence model for the Company domain entity.
// Names are unique per owner.
type CompanyModel struct {
	BaseModel
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_companies_user_name,priority:1"`
	Name          string    `gorm:"type:varchar(250);not null;uniqueIndex:idx_companies_user_name,priority:2"`
	Address       string    `gorm:"type:varchar(250);not null"`
	ContactPerson string    `gorm:"type:varchar(250)"`
	ContactNumber string    `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the persistence model to a domain Company entity.
func (m *CompanyModel) ToDomain() *partner.Company {
	return &partner.Company{
		BaseEntity:    m.BaseModel.ToDomain(),
		UserID:        m.UserID,
		Name:          m.Name,
		Address:       m.Address,
		ContactPerson: m.ContactPerson,
		ContactNumber: m.ContactNumber,
	}
}

// FromDomain populates the persistence model from a domain Company entity.
func (m *CompanyModel) FromDomain(c *partner.Company) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.UserID = c.UserID
	m.Name = c.Name
	m.Address = c.Address
	m.ContactPerson = c.ContactPerson
	m.ContactNumber = c.ContactNumber
}

// CompanyModelFromDomain creates a new persistence model from a domain Company entity.
func CompanyModelFromDomain(c *partner.Company) *CompanyModel {
	m := &CompanyModel{}
	m.FromDomain(c)
	return m
}
