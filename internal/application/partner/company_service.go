package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Error codes produced by company operations
const (
	CodeCompanyMissing = "NOT_FOUND"
	CodeDuplicateName  = "DUPLICATE_NAME"
	CodeInvalidFields  = "INVALID_FIELDS"
)

// CompanyService handles company-related business operations
type CompanyService struct {
	companyRepo partner.CompanyRepository
	logger      *zap.Logger
}

// NewCompanyService creates a new CompanyService
func NewCompanyService(companyRepo partner.CompanyRepository, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		logger:      logger,
	}
}

// Create creates a new company for the user
func (s *CompanyService) Create(ctx context.Context, userID uuid.UUID, req CreateCompanyRequest) (*CompanyResponse, error) {
	company, err := partner.NewCompany(userID, req.Name, req.Address, req.ContactPerson, req.ContactNumber)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameFree(ctx, userID, company.Name); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, duplicateCompany()
		}
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Successfully added a new company",
		zap.String("company_id", company.ID.String()),
		zap.String("name", company.Name))

	response := ToCompanyResponse(company)
	return &response, nil
}

// GetByID retrieves one of the user's companies
func (s *CompanyService) GetByID(ctx context.Context, userID, companyID uuid.UUID) (*CompanyResponse, error) {
	company, err := s.find(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	response := ToCompanyResponse(company)
	return &response, nil
}

// List retrieves all of the user's companies
func (s *CompanyService) List(ctx context.Context, userID uuid.UUID) ([]CompanyResponse, error) {
	companies, err := s.companyRepo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToCompanyResponses(companies), nil
}

// Update applies a partial update. Renaming onto another company's name is rejected.
func (s *CompanyService) Update(ctx context.Context, userID, companyID uuid.UUID, req UpdateCompanyRequest) (*CompanyResponse, error) {
	company, err := s.find(ctx, userID, companyID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != company.Name {
		if err := s.ensureNameFree(ctx, userID, *req.Name); err != nil {
			return nil, err
		}
	}

	if err := company.Apply(req.ToDomain()); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, duplicateCompany()
		}
		return nil, err
	}

	logger.L(ctx, s.logger).Info("Correctly updated the company", zap.String("company_id", company.ID.String()))

	response := ToCompanyResponse(company)
	return &response, nil
}

// Delete removes a company that no entry references and returns its name
func (s *CompanyService) Delete(ctx context.Context, userID, companyID uuid.UUID) (string, error) {
	company, err := s.find(ctx, userID, companyID)
	if err != nil {
		return "", err
	}

	inUse, err := s.companyRepo.HasEntries(ctx, company.ID)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", companyInUse(company.Name)
	}

	// An entry committed after the check above trips the foreign key instead.
	if err := s.companyRepo.Delete(ctx, userID, company.ID); err != nil {
		if errors.Is(err, shared.ErrInUse) {
			return "", companyInUse(company.Name)
		}
		return "", err
	}

	logger.L(ctx, s.logger).Info("Company deleted", zap.String("company_id", company.ID.String()), zap.String("name", company.Name))
	return company.Name, nil
}

func (s *CompanyService) find(ctx context.Context, userID, companyID uuid.UUID) (*partner.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, CompanyNotFound(companyID.String())
		}
		return nil, err
	}
	return company, nil
}

func (s *CompanyService) ensureNameFree(ctx context.Context, userID uuid.UUID, name string) error {
	exists, err := s.companyRepo.ExistsByName(ctx, userID, name)
	if err != nil {
		return err
	}
	if exists {
		return duplicateCompany()
	}
	return nil
}

func companyInUse(name string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrInUse.Code,
		fmt.Sprintf("Company: %s is referenced by existing entries and cannot be deleted.", name))
}

func duplicateCompany() *shared.DomainError {
	return shared.NewDomainError(CodeDuplicateName, "A company of this name already exists.")
}

// CompanyNotFound builds the not-found error for a company reference
func CompanyNotFound(ref string) *shared.DomainError {
	return shared.NewDomainError(CodeCompanyMissing, fmt.Sprintf("Company of ID: %s not found.", ref))
}
