package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/shared"
)

// ProductCompany is the cumulative ledger row for one (product, company) pair.
// Counters only ever grow.
type ProductCompany struct {
	shared.BaseEntity
	ProductID             uuid.UUID
	CompanyID             uuid.UUID
	TotalQuantityBought   decimal.Decimal
	TotalQuantitySupplied decimal.Decimal
	LastTransactionDate   string
}

// NewProductCompany creates a zeroed balance dated today
func NewProductCompany(productID, companyID uuid.UUID, today time.Time) *ProductCompany {
	return &ProductCompany{
		BaseEntity:            shared.NewBaseEntity(),
		ProductID:             productID,
		CompanyID:             companyID,
		TotalQuantityBought:   decimal.Zero,
		TotalQuantitySupplied: decimal.Zero,
		LastTransactionDate:   ledger.Today(today),
	}
}

// Apply adds quantity to the counter matching the transaction direction.
// Transaction types are checked upstream, so an unknown type is a no-op.
func (pc *ProductCompany) Apply(txType ledger.TransactionType, quantity decimal.Decimal) {
	switch txType {
	case ledger.TransactionPurchase:
		pc.TotalQuantityBought = pc.TotalQuantityBought.Add(quantity)
	case ledger.TransactionSupply:
		pc.TotalQuantitySupplied = pc.TotalQuantitySupplied.Add(quantity)
	}
}

// Touch records the day of the latest transaction on this pair
func (pc *ProductCompany) Touch(now time.Time) {
	pc.LastTransactionDate = ledger.Today(now)
	pc.UpdatedAt = now
}

// Net returns bought minus supplied for the pair
func (pc *ProductCompany) Net() decimal.Decimal {
	return pc.TotalQuantityBought.Sub(pc.TotalQuantitySupplied)
}
