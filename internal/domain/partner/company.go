package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/shared"
)

// Company represents a counterparty (supplier or customer) owned by a user
type Company struct {
	shared.BaseEntity
	UserID        uuid.UUID
	Name          string
	Address       string
	ContactPerson string
	ContactNumber string
}

// CompanyUpdate carries the editable company fields. Nil means unchanged.
type CompanyUpdate struct {
	Name          *string
	Address       *string
	ContactPerson *string
	ContactNumber *string
}

// NewCompany creates a new company for the given owner
func NewCompany(userID uuid.UUID, name, address, contactPerson, contactNumber string) (*Company, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Company owner cannot be empty")
	}

	c := &Company{
		BaseEntity:    shared.NewBaseEntity(),
		UserID:        userID,
		Name:          strings.TrimSpace(name),
		Address:       strings.TrimSpace(address),
		ContactPerson: strings.TrimSpace(contactPerson),
		ContactNumber: strings.TrimSpace(contactNumber),
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Apply applies a partial update to the company
func (c *Company) Apply(u CompanyUpdate) error {
	next := *c
	if u.Name != nil {
		next.Name = strings.TrimSpace(*u.Name)
	}
	if u.Address != nil {
		next.Address = strings.TrimSpace(*u.Address)
	}
	if u.ContactPerson != nil {
		next.ContactPerson = strings.TrimSpace(*u.ContactPerson)
	}
	if u.ContactNumber != nil {
		next.ContactNumber = strings.TrimSpace(*u.ContactNumber)
	}
	if err := next.validate(); err != nil {
		return err
	}

	next.UpdatedAt = time.Now()
	*c = next
	return nil
}

// OwnedBy reports whether the company belongs to the user
func (c *Company) OwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}

func (c *Company) validate() error {
	if c.Name == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Name cannot be empty.")
	}
	if len(c.Name) > 250 {
		return shared.NewDomainError("INVALID_COMPANY", "Name cannot exceed 250 characters.")
	}
	if c.Address == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Address cannot be empty.")
	}
	if c.ContactNumber == "" {
		return shared.NewDomainError("INVALID_COMPANY", "Contact_number cannot be empty.")
	}
	if len(c.ContactNumber) > 20 {
		return shared.NewDomainError("INVALID_COMPANY", "Contact number cannot exceed 20 characters.")
	}
	return nil
}
