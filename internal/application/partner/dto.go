package partner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/partner"
	"github.com/wzledger/backend/internal/domain/shared"
)

// CompanyEditableFields lists the keys accepted by a company update
var CompanyEditableFields = []string{"name", "address", "contact_person", "contact_number"}

// CreateCompanyRequest represents a request to create a new company
type CreateCompanyRequest struct {
	Name          string `json:"name" binding:"required,notblank,max=250"`
	Address       string `json:"address" binding:"required,notblank,max=250"`
	ContactPerson string `json:"contact_person" binding:"max=250"`
	ContactNumber string `json:"contact_number" binding:"required,notblank,max=20"`
}

// UpdateCompanyRequest represents a partial company update. Nil fields are left unchanged.
type UpdateCompanyRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=250"`
	Address       *string `json:"address" binding:"omitempty,max=250"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=250"`
	ContactNumber *string `json:"contact_number" binding:"omitempty,max=20"`
}

// ToDomain converts the request to a domain update
func (r UpdateCompanyRequest) ToDomain() partner.CompanyUpdate {
	return partner.CompanyUpdate{
		Name:          r.Name,
		Address:       r.Address,
		ContactPerson: r.ContactPerson,
		ContactNumber: r.ContactNumber,
	}
}

// CheckCompanyUpdateFields rejects keys that are not editable
func CheckCompanyUpdateFields(keys []string) error {
	var invalid []string
	for _, k := range keys {
		editable := false
		for _, f := range CompanyEditableFields {
			if k == f {
				editable = true
				break
			}
		}
		if !editable {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	sort.Strings(invalid)
	return shared.NewDomainError(CodeInvalidFields, fmt.Sprintf("Invalid field(s): %s.", strings.Join(invalid, ", ")))
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Address       string    `json:"address"`
	ContactPerson string    `json:"contact_person"`
	ContactNumber string    `json:"contact_number"`
	UserID        uuid.UUID `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToCompanyResponse converts a domain Company to CompanyResponse
func ToCompanyResponse(c *partner.Company) CompanyResponse {
	return CompanyResponse{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
		ContactNumber: c.ContactNumber,
		UserID:        c.UserID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// ToCompanyResponses converts a slice of domain Companies
func ToCompanyResponses(companies []partner.Company) []CompanyResponse {
	out := make([]CompanyResponse, len(companies))
	for i := range companies {
		out[i] = ToCompanyResponse(&companies[i])
	}
	return out
}
