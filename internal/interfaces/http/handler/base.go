package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"github.com/wzledger/backend/internal/interfaces/http/dto"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const (
	msgInternalError  = "Internal server error"
	msgAuthRequired   = "Authentication required."
	msgInvalidBody    = "Invalid request body."
	msgEmptyPatchBody = "No JSON data found in the request body."
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getUserID extracts the authenticated user's ID set by the JWT middleware
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.NewErrorResponse(message))
}

// Success sends a 200 response carrying a confirmation message
func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(message))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context) {
	h.Error(c, http.StatusUnauthorized, msgAuthRequired)
}

// InternalError sends a 500 response without leaking the cause
func (h *BaseHandler) InternalError(c *gin.Context) {
	h.Error(c, http.StatusInternalServerError, msgInternalError)
}

// HandleError converts domain errors to HTTP responses. Anything else is
// logged and reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Request failed",
				zap.String("code", domainErr.Code),
				zap.Error(err))
		}
		h.Error(c, status, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.InternalError(c)
}

// bindJSON binds and validates the body, writing a 400 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.BadRequest(c, middleware.FormatValidationErrors(err))
		return false
	}
	return true
}

// bindPatch decodes a partial update. It returns the keys the client sent
// so the caller can reject fields that are not editable.
func (h *BaseHandler) bindPatch(c *gin.Context, check func(keys []string) error, obj any) bool {
	raw, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, msgInvalidBody)
		return false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		h.BadRequest(c, msgInvalidBody)
		return false
	}
	if len(fields) == 0 {
		h.BadRequest(c, msgEmptyPatchBody)
		return false
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	if err := check(keys); err != nil {
		h.HandleError(c, err)
		return false
	}

	if err := json.Unmarshal(raw, obj); err != nil {
		h.BadRequest(c, msgInvalidBody)
		return false
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		h.BadRequest(c, middleware.FormatValidationErrors(err))
		return false
	}
	return true
}

// parseID reads a UUID path parameter. Malformed IDs are reported through
// notFound so they look the same as IDs that do not exist.
func (h *BaseHandler) parseID(c *gin.Context, param string, notFound func(ref string) *shared.DomainError) (uuid.UUID, bool) {
	ref := c.Param(param)
	id, err := uuid.Parse(ref)
	if err != nil {
		h.HandleError(c, notFound(ref))
		return uuid.Nil, false
	}
	return id, true
}

// requireUserID returns the authenticated user ID, writing a 401 when absent
func (h *BaseHandler) requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c)
		return uuid.Nil, false
	}
	return userID, true
}
