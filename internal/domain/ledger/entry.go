package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/shared"
)

// Entry is an immutable Purchase or Supply record.
// Its line items are fixed at construction and cannot be appended to afterwards.
type Entry struct {
	shared.BaseEntity
	UserID          uuid.UUID
	CompanyID       uuid.UUID
	Date            string
	DocumentNr      string
	TransactionType TransactionType
	lineItems       []LineItem
}

// LineItem is one product quantity/price row of an entry
type LineItem struct {
	shared.BaseEntity
	EntryID      uuid.UUID
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
	Position     int
}

// LineItemSpec describes a line item before it belongs to an entry
type LineItemSpec struct {
	ProductID    uuid.UUID
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
}

// NewEntry builds an entry together with all of its line items
func NewEntry(userID, companyID uuid.UUID, date, documentNr string, txType TransactionType, specs []LineItemSpec) (*Entry, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Entry owner cannot be empty")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Entry company cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Transaction type must be "+AllowedTransactionTypes())
	}
	if len(specs) == 0 {
		return nil, shared.NewDomainError("NO_LINE_ITEMS", "At least one line item is required to create an entry.")
	}

	e := &Entry{
		BaseEntity:      shared.NewBaseEntity(),
		UserID:          userID,
		CompanyID:       companyID,
		Date:            date,
		DocumentNr:      documentNr,
		TransactionType: txType,
	}

	items := make([]LineItem, 0, len(specs))
	for i, s := range specs {
		if !s.Quantity.IsPositive() || !s.PricePerUnit.IsPositive() {
			return nil, shared.NewDomainError("INVALID_LINE_ITEM", "Non-positive values for price or quantity for the product in the new Entry.")
		}
		items = append(items, LineItem{
			BaseEntity:   shared.NewBaseEntity(),
			EntryID:      e.ID,
			ProductID:    s.ProductID,
			Quantity:     s.Quantity,
			PricePerUnit: s.PricePerUnit,
			Position:     i,
		})
	}
	e.lineItems = items

	return e, nil
}

// RehydrateEntry rebuilds a persisted entry. Items must already be in position order.
func RehydrateEntry(base shared.BaseEntity, userID, companyID uuid.UUID, date, documentNr string, txType TransactionType, items []LineItem) *Entry {
	owned := make([]LineItem, len(items))
	copy(owned, items)
	return &Entry{
		BaseEntity:      base,
		UserID:          userID,
		CompanyID:       companyID,
		Date:            date,
		DocumentNr:      documentNr,
		TransactionType: txType,
		lineItems:       owned,
	}
}

// LineItems returns a copy of the entry's line items in position order
func (e *Entry) LineItems() []LineItem {
	out := make([]LineItem, len(e.lineItems))
	copy(out, e.lineItems)
	return out
}

// Total returns the sum of quantity * price over all line items
func (e *Entry) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range e.lineItems {
		total = total.Add(li.Quantity.Mul(li.PricePerUnit))
	}
	return total
}

// OwnedBy reports whether the entry belongs to the user
func (e *Entry) OwnedBy(userID uuid.UUID) bool {
	return e.UserID == userID
}

// Today formats t as the YYYY-MM-DD date used across the ledger
func Today(t time.Time) string {
	return t.Format(time.DateOnly)
}
