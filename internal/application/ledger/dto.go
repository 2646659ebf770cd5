package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/ledger"
)

// CreateEntryResult is returned after an entry has been committed
type CreateEntryResult struct {
	Message string    `json:"message"`
	EntryID uuid.UUID `json:"entry_id"`
}

// EntryResponse represents an entry in API responses
type EntryResponse struct {
	ID              uuid.UUID          `json:"id"`
	Date            string             `json:"date"`
	DocumentNr      string             `json:"document_nr"`
	TransactionType string             `json:"transaction_type"`
	CompanyID       uuid.UUID          `json:"company_id"`
	UserID          uuid.UUID          `json:"user_id"`
	LineItems       []LineItemResponse `json:"line_items"`
	Total           decimal.Decimal    `json:"total"`
	CreatedAt       time.Time          `json:"created_at"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
}

// ToEntryResponse converts a domain Entry to its response form
func ToEntryResponse(e *ledger.Entry) EntryResponse {
	items := e.LineItems()
	lines := make([]LineItemResponse, len(items))
	for i, li := range items {
		lines[i] = LineItemResponse{
			ID:           li.ID,
			ProductID:    li.ProductID,
			Quantity:     li.Quantity,
			PricePerUnit: li.PricePerUnit,
		}
	}
	return EntryResponse{
		ID:              e.ID,
		Date:            e.Date,
		DocumentNr:      e.DocumentNr,
		TransactionType: e.TransactionType.String(),
		CompanyID:       e.CompanyID,
		UserID:          e.UserID,
		LineItems:       lines,
		Total:           e.Total(),
		CreatedAt:       e.CreatedAt,
	}
}

// ToEntryResponses converts a list of entries
func ToEntryResponses(entries []*ledger.Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToEntryResponse(e)
	}
	return out
}
