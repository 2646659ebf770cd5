package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	ledgerapp "github.com/wzledger/backend/internal/application/ledger"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
)

const msgEntriesImmutable = "Entries are immutable and cannot be modified or deleted."

// EntryUseCases is the ledger surface used by EntryHandler
type EntryUseCases interface {
	Create(ctx context.Context, user *identity.User, payload ledgerapp.Payload) (*ledgerapp.CreateEntryResult, error)
	GetEntry(ctx context.Context, userID, id uuid.UUID) (*ledgerapp.EntryResponse, error)
	ListEntries(ctx context.Context, userID uuid.UUID) ([]ledgerapp.EntryResponse, error)
}

// EntryHandler handles ledger entry endpoints
type EntryHandler struct {
	BaseHandler
	entries EntryUseCases
}

// NewEntryHandler creates a new EntryHandler
func NewEntryHandler(entries EntryUseCases) *EntryHandler {
	return &EntryHandler{entries: entries}
}

// Create records a new entry together with its balances and stock changes
// POST /api/v1/entries
func (h *EntryHandler) Create(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		h.Unauthorized(c)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, "Request body exceeds maximum allowed size.")
			return
		}
		h.BadRequest(c, msgInvalidBody)
		return
	}

	result, err := h.entries.Create(c.Request.Context(), user, decodePayload(raw))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// List returns the user's entries, newest first
// GET /api/v1/entries
func (h *EntryHandler) List(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	entries, err := h.entries.ListEntries(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// GetByID returns one of the user's entries
// GET /api/v1/entries/:id
func (h *EntryHandler) GetByID(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c, "id", ledgerapp.EntryNotFound)
	if !ok {
		return
	}

	entry, err := h.entries.GetEntry(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// Immutable answers PATCH and DELETE on entries
func (h *EntryHandler) Immutable(c *gin.Context) {
	h.Error(c, http.StatusNotImplemented, msgEntriesImmutable)
}

// decodePayload keeps numbers as json.Number so quantities and prices are
// never rounded through float64. Anything that is not a JSON object
// decodes to an empty payload, which validation rejects.
func decodePayload(raw []byte) ledgerapp.Payload {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var payload ledgerapp.Payload
	if err := dec.Decode(&payload); err != nil {
		return nil
	}
	return payload
}
