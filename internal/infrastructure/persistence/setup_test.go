package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setupLedgerTestDB opens a file-backed SQLite database with every ledger table.
// A single connection keeps transactions and plain reads on the same database.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ledger.db")), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *identity.User {
	t.Helper()
	user, err := identity.NewUser("Tester", email, "supersecret")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

func seedCompany(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *partner.Company {
	t.Helper()
	company, err := partner.NewCompany(userID, name, "1 Main St", "Jane Doe", "+48 123 456 789")
	require.NoError(t, err)
	require.NoError(t, NewGormCompanyRepository(db).Save(context.Background(), company))
	return company
}

func seedProduct(t *testing.T, db *gorm.DB, userID uuid.UUID, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(userID, name, "8471.30", "https://img.example.com/"+name+".png")
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), product))
	return product
}
