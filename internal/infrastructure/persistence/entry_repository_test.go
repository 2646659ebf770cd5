package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appledger "github.com/wzledger/backend/internal/application/ledger"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ledgerNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func newLedgerService(db *gorm.DB) *appledger.EntryService {
	entryRepo := NewGormEntryRepository(db)
	resolver := appledger.NewResolver(entryRepo, NewGormCompanyRepository(db), NewGormProductRepository(db))
	service := appledger.NewEntryService(entryRepo, resolver, NewGormTransactionScope(db), zap.NewNop())
	service.SetClock(ledgerNow)
	return service
}

func entryPayload(t *testing.T, body string) appledger.Payload {
	t.Helper()
	var p appledger.Payload
	dec := json.NewDecoder(bytes.NewBufferString(body))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&p))
	return p
}

func countRows(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestGormEntryRepository_CreateAndFind(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormEntryRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner@example.com")
	company := seedCompany(t, db, user.ID, "Acme")
	widget := seedProduct(t, db, user.ID, "Widget")
	gadget := seedProduct(t, db, user.ID, "Gadget")

	entry, err := ledger.NewEntry(user.ID, company.ID, "2025-05-01", "WZ 1/05/2025", ledger.TransactionPurchase, []ledger.LineItemSpec{
		{ProductID: widget.ID, Quantity: decimal.NewFromInt(3), PricePerUnit: decimal.RequireFromString("2.50")},
		{ProductID: gadget.ID, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(7)},
	})
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, entry))
	for _, item := range entry.LineItems() {
		item := item
		require.NoError(t, repo.CreateLineItem(ctx, &item))
	}

	t.Run("finds the entry with line items in order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID, entry.ID)
		require.NoError(t, err)
		assert.Equal(t, "WZ 1/05/2025", found.DocumentNr)
		assert.Equal(t, ledger.TransactionPurchase, found.TransactionType)

		items := found.LineItems()
		require.Len(t, items, 2)
		assert.Equal(t, widget.ID, items[0].ProductID)
		assert.Equal(t, gadget.ID, items[1].ProductID)
		assert.True(t, decimal.RequireFromString("14.5").Equal(found.Total()))
	})

	t.Run("is scoped to the owner", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New(), entry.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("reports used document numbers", func(t *testing.T) {
		exists, err := repo.ExistsByDocumentNr(ctx, "WZ 1/05/2025")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByDocumentNr(ctx, "WZ 2/05/2025")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("rejects a reused document number", func(t *testing.T) {
		dup, err := ledger.NewEntry(user.ID, company.ID, "2025-05-02", "WZ 1/05/2025", ledger.TransactionSupply, []ledger.LineItemSpec{
			{ProductID: widget.ID, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(1)},
		})
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), shared.ErrAlreadyExists)
	})
}

func TestGormEntryRepository_FindAllNewestFirst(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewGormEntryRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner@example.com")
	company := seedCompany(t, db, user.ID, "Acme")
	widget := seedProduct(t, db, user.ID, "Widget")

	spec := []ledger.LineItemSpec{{ProductID: widget.ID, Quantity: decimal.NewFromInt(1), PricePerUnit: decimal.NewFromInt(1)}}
	older, err := ledger.NewEntry(user.ID, company.ID, "2025-05-01", "WZ 1/05/2025", ledger.TransactionPurchase, spec)
	require.NoError(t, err)
	older.CreatedAt = older.CreatedAt.Add(-time.Hour)
	newer, err := ledger.NewEntry(user.ID, company.ID, "2025-05-02", "WZ 2/05/2025", ledger.TransactionPurchase, spec)
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	entries, err := repo.FindAll(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, older.ID, entries[1].ID)

	none, err := repo.FindAll(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestEntryService_PersistsPurchaseThenSupply(t *testing.T) {
	db := setupLedgerTestDB(t)
	service := newLedgerService(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner@example.com")
	company := seedCompany(t, db, user.ID, "Acme")
	widget := seedProduct(t, db, user.ID, "Widget")

	purchase := entryPayload(t, `{"date":"2025-05-01","document_nr":"WZ 1/05/2025","transaction_type":"Purchase","company":"Acme",
		"line_items":[{"quantity":10,"price_per_unit":2.5,"product":"Widget"}]}`)
	result, err := service.Create(ctx, user, purchase)
	require.NoError(t, err)
	assert.Equal(t, "Entry created successfully!", result.Message)

	supply := entryPayload(t, `{"date":"2025-05-02","document_nr":"WZ 2/05/2025","transaction_type":"Supply","company":"Acme",
		"line_items":[{"quantity":4,"price_per_unit":3,"product":"Widget"}]}`)
	_, err = service.Create(ctx, user, supply)
	require.NoError(t, err)

	stored, err := NewGormProductRepository(db).FindByID(ctx, user.ID, widget.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(6).Equal(stored.Stock), "stock was %s", stored.Stock)

	balances, err := NewGormBalanceRepository(db).FindByProduct(ctx, widget.ID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, company.ID, balances[0].CompanyID)
	assert.True(t, decimal.NewFromInt(10).Equal(balances[0].TotalQuantityBought))
	assert.True(t, decimal.NewFromInt(4).Equal(balances[0].TotalQuantitySupplied))
	assert.Equal(t, "2025-06-01", balances[0].LastTransactionDate)

	assert.Equal(t, int64(2), countRows(t, db, &models.EntryModel{}))
	assert.Equal(t, int64(2), countRows(t, db, &models.LineItemModel{}))
}

func TestEntryService_InsufficientStockRollsBackEverything(t *testing.T) {
	db := setupLedgerTestDB(t)
	service := newLedgerService(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner@example.com")
	seedCompany(t, db, user.ID, "Acme")
	widget := seedProduct(t, db, user.ID, "Widget")
	gadget := seedProduct(t, db, user.ID, "Gadget")

	_, err := service.Create(ctx, user, entryPayload(t, `{"date":"2025-05-01","document_nr":"WZ 1/05/2025","transaction_type":"Purchase","company":"Acme",
		"line_items":[{"quantity":5,"price_per_unit":1,"product":"Widget"}]}`))
	require.NoError(t, err)

	// The first line item succeeds before the second one runs out of stock
	_, err = service.Create(ctx, user, entryPayload(t, `{"date":"2025-05-02","document_nr":"WZ 2/05/2025","transaction_type":"Supply","company":"Acme",
		"line_items":[
			{"quantity":5,"price_per_unit":1,"product":"Widget"},
			{"quantity":1,"price_per_unit":1,"product":"Gadget"}
		]}`))
	require.Error(t, err)

	var de *shared.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, shared.ErrInsufficientStock.Code, de.Code)

	exists, err := NewGormEntryRepository(db).ExistsByDocumentNr(ctx, "WZ 2/05/2025")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int64(1), countRows(t, db, &models.EntryModel{}))
	assert.Equal(t, int64(1), countRows(t, db, &models.LineItemModel{}))

	products := NewGormProductRepository(db)
	storedWidget, err := products.FindByID(ctx, user.ID, widget.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(storedWidget.Stock))
	storedGadget, err := products.FindByID(ctx, user.ID, gadget.ID)
	require.NoError(t, err)
	assert.True(t, storedGadget.Stock.IsZero())

	balances, err := NewGormBalanceRepository(db).FindByProduct(ctx, widget.ID)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, balances[0].TotalQuantitySupplied.IsZero())

	gadgetBalances, err := NewGormBalanceRepository(db).FindByProduct(ctx, gadget.ID)
	require.NoError(t, err)
	assert.Empty(t, gadgetBalances)
}

func TestEntryService_RejectsUnknownReferences(t *testing.T) {
	db := setupLedgerTestDB(t)
	service := newLedgerService(db)
	ctx := context.Background()

	user := seedUser(t, db, "owner@example.com")
	seedCompany(t, db, user.ID, "Acme")
	seedProduct(t, db, user.ID, "Widget")

	t.Run("company owned by someone else", func(t *testing.T) {
		other := seedUser(t, db, "other@example.com")
		seedCompany(t, db, other.ID, "Globex")

		_, err := service.Create(ctx, user, entryPayload(t, `{"date":"2025-05-01","document_nr":"WZ 1/05/2025","transaction_type":"Purchase","company":"Globex",
			"line_items":[{"quantity":1,"price_per_unit":1,"product":"Widget"}]}`))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, appledger.CodeCompanyNotFound, de.Code)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := service.Create(ctx, user, entryPayload(t, `{"date":"2025-05-01","document_nr":"WZ 1/05/2025","transaction_type":"Purchase","company":"Acme",
			"line_items":[{"quantity":1,"price_per_unit":1,"product":"Sprocket"}]}`))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, appledger.CodeProductNotFound, de.Code)
	})

	t.Run("reused document number", func(t *testing.T) {
		payload := `{"date":"2025-05-01","document_nr":"WZ 9/05/2025","transaction_type":"Purchase","company":"Acme",
			"line_items":[{"quantity":1,"price_per_unit":1,"product":"Widget"}]}`
		_, err := service.Create(ctx, user, entryPayload(t, payload))
		require.NoError(t, err)

		_, err = service.Create(ctx, user, entryPayload(t, payload))
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, appledger.CodeDuplicateDocument, de.Code)
	})

	assert.Equal(t, int64(1), countRows(t, db, &models.EntryModel{}))
}
