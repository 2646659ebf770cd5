package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBalanceRepository implements inventory.BalanceRepository using GORM
type GormBalanceRepository struct {
	db *gorm.DB
}

// NewGormBalanceRepository creates a new GormBalanceRepository
func NewGormBalanceRepository(db *gorm.DB) *GormBalanceRepository {
	return &GormBalanceRepository{db: db}
}

// GetOrCreate returns the locked row for the pair, inserting a zeroed one if none exists.
// A concurrent insert of the same pair is absorbed by ON CONFLICT DO NOTHING.
func (r *GormBalanceRepository) GetOrCreate(ctx context.Context, productID, companyID uuid.UUID, today time.Time) (*inventory.ProductCompany, error) {
	balance, err := r.findPair(ctx, productID, companyID)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh := inventory.NewProductCompany(productID, companyID, today)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "company_id"}},
			DoNothing: true,
		}).
		Create(models.ProductCompanyModelFromDomain(fresh))
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return r.findPair(ctx, productID, companyID)
	}
	return fresh, nil
}

// Save persists the counters and last transaction date
func (r *GormBalanceRepository) Save(ctx context.Context, balance *inventory.ProductCompany) error {
	result := r.db.WithContext(ctx).Model(&models.ProductCompanyModel{}).
		Where("id = ?", balance.ID).
		Updates(map[string]any{
			"total_quantity_bought":   balance.TotalQuantityBought,
			"total_quantity_supplied": balance.TotalQuantitySupplied,
			"last_transaction_date":   balance.LastTransactionDate,
			"updated_at":              balance.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByProduct lists all balances of a product ordered by company
func (r *GormBalanceRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.ProductCompany, error) {
	var rows []models.ProductCompanyModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("company_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	balances := make([]inventory.ProductCompany, len(rows))
	for i := range rows {
		balances[i] = *rows[i].ToDomain()
	}
	return balances, nil
}

func (r *GormBalanceRepository) findPair(ctx context.Context, productID, companyID uuid.UUID) (*inventory.ProductCompany, error) {
	var model models.ProductCompanyModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ? AND company_id = ?", productID, companyID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

var _ inventory.BalanceRepository = (*GormBalanceRepository)(nil)
