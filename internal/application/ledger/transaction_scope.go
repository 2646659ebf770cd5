package ledger

import (
	"context"

	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/ledger"
)

// TransactionScope provides transactional access to the repositories touched by entry creation.
// All repository calls made through the handle given to fn commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back; otherwise it is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories is the explicit transaction handle passed to the write path.
// Every repository returned shares the same underlying transaction.
type TransactionalRepositories interface {
	// EntryRepo returns the entry repository scoped to the current transaction
	EntryRepo() ledger.EntryRepository
	// BalanceRepo returns the product/company balance repository scoped to the current transaction
	BalanceRepo() inventory.BalanceRepository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
}

// NoOpTransactionScope runs fn directly against the given repositories without a transaction.
// Used by unit tests with mocked repositories.
type NoOpTransactionScope struct {
	entryRepo   ledger.EntryRepository
	balanceRepo inventory.BalanceRepository
	productRepo catalog.ProductRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	entryRepo ledger.EntryRepository,
	balanceRepo inventory.BalanceRepository,
	productRepo catalog.ProductRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		entryRepo:   entryRepo,
		balanceRepo: balanceRepo,
		productRepo: productRepo,
	}
}

// Execute runs fn without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// EntryRepo returns the entry repository
func (s *NoOpTransactionScope) EntryRepo() ledger.EntryRepository {
	return s.entryRepo
}

// BalanceRepo returns the balance repository
func (s *NoOpTransactionScope) BalanceRepo() inventory.BalanceRepository {
	return s.balanceRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
