package ledger

import (
	"context"

	"github.com/google/uuid"
)

// EntryRepository defines the interface for entry persistence.
// Entries are append-only: there is no update or delete.
type EntryRepository interface {
	// Create inserts the entry header
	Create(ctx context.Context, entry *Entry) error

	// CreateLineItem inserts one line item of an already created entry
	CreateLineItem(ctx context.Context, item *LineItem) error

	// ExistsByDocumentNr checks if any entry already uses the document number
	ExistsByDocumentNr(ctx context.Context, documentNr string) (bool, error)

	// FindByID loads an entry with its line items for the owner
	FindByID(ctx context.Context, userID, id uuid.UUID) (*Entry, error)

	// FindAll lists the owner's entries, newest first, with line items
	FindAll(ctx context.Context, userID uuid.UUID) ([]*Entry, error)
}
