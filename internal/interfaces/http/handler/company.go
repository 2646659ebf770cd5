package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/wzledger/backend/internal/application/partner"
)

// CompanyUseCases is the company surface used by CompanyHandler
type CompanyUseCases interface {
	Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateCompanyRequest) (*partnerapp.CompanyResponse, error)
	GetByID(ctx context.Context, userID, companyID uuid.UUID) (*partnerapp.CompanyResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]partnerapp.CompanyResponse, error)
	Update(ctx context.Context, userID, companyID uuid.UUID, req partnerapp.UpdateCompanyRequest) (*partnerapp.CompanyResponse, error)
	Delete(ctx context.Context, userID, companyID uuid.UUID) (string, error)
}

// CompanyHandler handles company endpoints
type CompanyHandler struct {
	BaseHandler
	companies CompanyUseCases
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companies CompanyUseCases) *CompanyHandler {
	return &CompanyHandler{companies: companies}
}

// CompanyEnvelope wraps a single company in responses
type CompanyEnvelope struct {
	Company partnerapp.CompanyResponse `json:"company"`
}

// List returns the user's companies
// GET /api/v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	companies, err := h.companies.List(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, companies)
}

// GetByID returns one company
// GET /api/v1/companies/:id
func (h *CompanyHandler) GetByID(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", partnerapp.CompanyNotFound)
	if !ok {
		return
	}

	company, err := h.companies.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CompanyEnvelope{Company: *company})
}

// Create creates a company
// POST /api/v1/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req partnerapp.CreateCompanyRequest
	if !h.bindJSON(c, &req) {
		return
	}

	company, err := h.companies.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fmt.Sprintf("Successfully created a new company: %s!", company.Name))
}

// Update applies a partial update
// PATCH /api/v1/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", partnerapp.CompanyNotFound)
	if !ok {
		return
	}

	var req partnerapp.UpdateCompanyRequest
	if !h.bindPatch(c, partnerapp.CheckCompanyUpdateFields, &req) {
		return
	}

	company, err := h.companies.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, CompanyEnvelope{Company: *company})
}

// Delete removes a company that no entry references
// DELETE /api/v1/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", partnerapp.CompanyNotFound)
	if !ok {
		return
	}

	name, err := h.companies.Delete(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fmt.Sprintf("Successfully deleted the company: %s.", name))
}
