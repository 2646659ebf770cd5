package partner

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository defines the interface for company persistence.
// Lookups are scoped to the owning user.
type CompanyRepository interface {
	// FindByID finds a company by ID for the owner
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Company, error)

	// FindByName finds a company by its name for the owner
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*Company, error)

	// FindAll lists the owner's companies ordered by name
	FindAll(ctx context.Context, userID uuid.UUID) ([]Company, error)

	// ExistsByName checks if the owner already has a company with this name
	ExistsByName(ctx context.Context, userID uuid.UUID, name string) (bool, error)

	// Save creates or updates a company
	Save(ctx context.Context, company *Company) error

	// Delete removes a company
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// HasEntries reports whether any entry references the company
	HasEntries(ctx context.Context, id uuid.UUID) (bool, error)
}
