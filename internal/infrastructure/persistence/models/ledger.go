package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/ledger"
)

// EntryModel is the persistence model for the Entry aggregate.
type EntryModel struct {
	BaseModel
	UserID          uuid.UUID              `gorm:"type:uuid;not null;index"`
	CompanyID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	Date            string                 `gorm:"type:varchar(10);not null"`
	DocumentNr      string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_entries_document_nr"`
	TransactionType ledger.TransactionType `gorm:"type:varchar(20);not null"`
	LineItems       []LineItemModel        `gorm:"foreignKey:EntryID"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "entries"
}

// ToDomain converts the persistence model to a domain Entry.
// LineItems must be loaded in position order.
func (m *EntryModel) ToDomain() *ledger.Entry {
	items := make([]ledger.LineItem, len(m.LineItems))
	for i := range m.LineItems {
		items[i] = m.LineItems[i].ToDomain()
	}
	return ledger.RehydrateEntry(
		m.BaseModel.ToDomain(),
		m.UserID,
		m.CompanyID,
		m.Date,
		m.DocumentNr,
		m.TransactionType,
		items,
	)
}

// EntryModelFromDomain creates the header model of an entry. Line items are persisted separately.
func EntryModelFromDomain(e *ledger.Entry) *EntryModel {
	m := &EntryModel{
		UserID:          e.UserID,
		CompanyID:       e.CompanyID,
		Date:            e.Date,
		DocumentNr:      e.DocumentNr,
		TransactionType: e.TransactionType,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// LineItemModel is the persistence model for one line of an entry.
type LineItemModel struct {
	BaseModel
	EntryID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity     decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	PricePerUnit decimal.Decimal `gorm:"type:numeric(18,4);not null"`
	Position     int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LineItemModel) ToDomain() ledger.LineItem {
	return ledger.LineItem{
		BaseEntity:   m.BaseModel.ToDomain(),
		EntryID:      m.EntryID,
		ProductID:    m.ProductID,
		Quantity:     m.Quantity,
		PricePerUnit: m.PricePerUnit,
		Position:     m.Position,
	}
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem.
func LineItemModelFromDomain(li *ledger.LineItem) *LineItemModel {
	m := &LineItemModel{
		EntryID:      li.EntryID,
		ProductID:    li.ProductID,
		Quantity:     li.Quantity,
		PricePerUnit: li.PricePerUnit,
		Position:     li.Position,
	}
	m.FromDomainBaseEntity(li.BaseEntity)
	return m
}
