package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BalanceRepository persists ProductCompany rows
type BalanceRepository interface {
	// GetOrCreate returns the row for the pair, inserting a zeroed one dated today if none exists.
	// The insert joins the caller's transaction. Repeated calls return the same row.
	GetOrCreate(ctx context.Context, productID, companyID uuid.UUID, today time.Time) (*ProductCompany, error)

	// Save persists counters and last transaction date
	Save(ctx context.Context, balance *ProductCompany) error

	// FindByProduct lists all balances of a product ordered by company
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]ProductCompany, error)
}
