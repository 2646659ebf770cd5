package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/domain/shared"
)

// ResolutionKind tags the outcome of reference resolution
type ResolutionKind int

const (
	// ResolutionOK means every reference was found and the document number is free
	ResolutionOK ResolutionKind = iota
	// ResolutionDuplicateDocument means an entry already uses the document number
	ResolutionDuplicateDocument
	// ResolutionCompanyNotFound means the company name matched nothing
	ResolutionCompanyNotFound
	// ResolutionProductNotFound means at least one product name matched nothing
	ResolutionProductNotFound
)

// Resolution is the result of resolving an entry's references
type Resolution struct {
	Kind     ResolutionKind
	Message  string
	Company  *partner.Company
	Products map[string]*catalog.Product
}

// OK reports whether resolution succeeded
func (r Resolution) OK() bool {
	return r.Kind == ResolutionOK
}

// Err converts a failed resolution to a domain error, nil on success
func (r Resolution) Err() error {
	switch r.Kind {
	case ResolutionDuplicateDocument:
		return shared.NewDomainError(CodeDuplicateDocument, r.Message)
	case ResolutionCompanyNotFound:
		return shared.NewDomainError(CodeCompanyNotFound, r.Message)
	case ResolutionProductNotFound:
		return shared.NewDomainError(CodeProductNotFound, r.Message)
	default:
		return nil
	}
}

// Resolver turns the names in a validated entry into persisted entities.
// It only reads.
type Resolver struct {
	entries   ledger.EntryRepository
	companies partner.CompanyRepository
	products  catalog.ProductRepository
}

// NewResolver creates a Resolver
func NewResolver(entries ledger.EntryRepository, companies partner.CompanyRepository, products catalog.ProductRepository) *Resolver {
	return &Resolver{entries: entries, companies: companies, products: products}
}

// Resolve checks document uniqueness, then the company, then all products in one lookup.
// A store failure is returned as an error rather than a Resolution.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, v *ValidatedEntry) (Resolution, error) {
	exists, err := r.entries.ExistsByDocumentNr(ctx, v.DocumentNr)
	if err != nil {
		return Resolution{}, fmt.Errorf("check document number: %w", err)
	}
	if exists {
		return duplicateDocument(v.DocumentNr), nil
	}

	company, err := r.companies.FindByName(ctx, userID, v.Company)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Resolution{
				Kind:    ResolutionCompanyNotFound,
				Message: fmt.Sprintf("Company: %s not found in the database.", v.Company),
			}, nil
		}
		return Resolution{}, fmt.Errorf("find company: %w", err)
	}

	names := v.ProductNames()
	found, err := r.products.FindByNames(ctx, userID, names)
	if err != nil {
		return Resolution{}, fmt.Errorf("find products: %w", err)
	}

	byName := make(map[string]*catalog.Product, len(found))
	for i := range found {
		byName[found[i].Name] = &found[i]
	}
	for _, name := range names {
		if _, ok := byName[name]; !ok {
			return Resolution{
				Kind:    ResolutionProductNotFound,
				Message: fmt.Sprintf("No such product: %s found in the database while trying to create new Entry", name),
			}, nil
		}
	}

	return Resolution{Kind: ResolutionOK, Company: company, Products: byName}, nil
}

func duplicateDocument(documentNr string) Resolution {
	return Resolution{
		Kind:    ResolutionDuplicateDocument,
		Message: fmt.Sprintf("The entry tied to a transaction: %s already exists.", documentNr),
	}
}
