package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCompanyRepository implements partner.CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID finds one of the owner's companies
func (r *GormCompanyRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*partner.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByName finds one of the owner's companies by exact name
func (r *GormCompanyRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*partner.Company, error) {
	var model models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists the owner's companies ordered by name
func (r *GormCompanyRepository) FindAll(ctx context.Context, userID uuid.UUID) ([]partner.Company, error) {
	var rows []models.CompanyModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	companies := make([]partner.Company, len(rows))
	for i := range rows {
		companies[i] = *rows[i].ToDomain()
	}
	return companies, nil
}

// ExistsByName checks if the owner already has a company with this name
func (r *GormCompanyRepository) ExistsByName(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CompanyModel{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *partner.Company) error {
	return translateError(r.db.WithContext(ctx).Save(models.CompanyModelFromDomain(company)).Error)
}

// Delete removes one of the owner's companies
func (r *GormCompanyRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&models.CompanyModel{})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HasEntries reports whether any entry references the company
func (r *GormCompanyRepository) HasEntries(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EntryModel{}).
		Where("company_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ partner.CompanyRepository = (*GormCompanyRepository)(nil)
