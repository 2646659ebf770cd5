package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEntryRepository implements ledger.EntryRepository using GORM
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// Create inserts the entry header without its line items
func (r *GormEntryRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	return translateError(r.db.WithContext(ctx).
		Omit(clause.Associations).
		Create(models.EntryModelFromDomain(entry)).Error)
}

// CreateLineItem inserts one line item
func (r *GormEntryRepository) CreateLineItem(ctx context.Context, item *ledger.LineItem) error {
	return translateError(r.db.WithContext(ctx).Create(models.LineItemModelFromDomain(item)).Error)
}

// ExistsByDocumentNr checks if any entry already uses the document number
func (r *GormEntryRepository) ExistsByDocumentNr(ctx context.Context, documentNr string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EntryModel{}).
		Where("document_nr = ?", documentNr).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindByID loads one of the owner's entries with its line items
func (r *GormEntryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*ledger.Entry, error) {
	var model models.EntryModel
	if err := r.withLineItems(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the owner's entries newest first
func (r *GormEntryRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	var rows []models.EntryModel
	if err := r.withLineItems(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]*ledger.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

func (r *GormEntryRepository) withLineItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

var _ ledger.EntryRepository = (*GormEntryRepository)(nil)
