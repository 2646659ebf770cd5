package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by ID for the owner
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads a product and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByNames loads the owner's products matching any of the names in one query
	FindByNames(ctx context.Context, userID uuid.UUID, names []string) ([]Product, error)

	// FindAll lists the owner's products ordered by name
	FindAll(ctx context.Context, userID uuid.UUID) ([]Product, error)

	// ExistsByName checks if any product already uses the name
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// UpdateStock persists only the stock level of a product
	UpdateStock(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, userID, id uuid.UUID) error

	// HasLineItems reports whether any line item references the product
	HasLineItems(ctx context.Context, id uuid.UUID) (bool, error)
}
