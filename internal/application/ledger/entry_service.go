package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wzledger/backend/internal/domain/identity"
	"github.com/wzledger/backend/internal/domain/inventory"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/shared"
	"github.com/wzledger/backend/internal/infrastructure/logger"
	"github.com/wzledger/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Error codes produced by entry creation and lookup
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeDuplicateDocument = "DUPLICATE_DOCUMENT"
	CodeCompanyNotFound   = "COMPANY_NOT_FOUND"
	CodeProductNotFound   = "PRODUCT_NOT_FOUND"
	CodeLookupFailed      = "LOOKUP_FAILED"
	CodeEntrySaveFailed   = "ENTRY_SAVE_FAILED"
	CodeEntryNotFound     = "ENTRY_NOT_FOUND"
)

const (
	msgEntryCreated = "Entry created successfully!"
	msgSaveFailed   = "Failed to save entry."
	msgLookupFailed = "An internal database error occurred. Please try again later."
)

// entryState names the steps of the write path, for logging
type entryState string

const (
	stateValidated           entryState = "validated"
	stateResolved            entryState = "resolved"
	stateEntryCreated        entryState = "entry_created"
	stateLineItemsProcessing entryState = "line_items_processing"
	stateCommitted           entryState = "committed"
	stateRolledBack          entryState = "rolled_back"
)

// Metrics receives entry creation outcomes
type Metrics interface {
	RecordEntryCreated(ctx context.Context, transactionType string, lineItems int)
	RecordEntryRejected(ctx context.Context, code string)
}

type noopMetrics struct{}

func (noopMetrics) RecordEntryCreated(context.Context, string, int) {}
func (noopMetrics) RecordEntryRejected(context.Context, string)     {}

// EntryService creates and reads entries.
// Creation runs validation and resolution first, then writes everything in one transaction.
type EntryService struct {
	validator *Validator
	resolver  *Resolver
	entryRepo ledger.EntryRepository
	scope     TransactionScope
	metrics   Metrics
	now       func() time.Time
	logger    *zap.Logger
}

// NewEntryService creates a new EntryService
func NewEntryService(
	entryRepo ledger.EntryRepository,
	resolver *Resolver,
	scope TransactionScope,
	logger *zap.Logger,
) *EntryService {
	return &EntryService{
		validator: NewValidator(nil),
		resolver:  resolver,
		entryRepo: entryRepo,
		scope:     scope,
		metrics:   noopMetrics{},
		now:       time.Now,
		logger:    logger,
	}
}

// SetMetrics sets the metrics sink
func (s *EntryService) SetMetrics(m Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetClock replaces the time source used for validation and ledger dates
func (s *EntryService) SetClock(now func() time.Time) {
	s.now = now
	s.validator = NewValidator(now)
}

// Create validates, resolves and persists a new entry for user.
// Nothing is written unless every line item succeeds.
func (s *EntryService) Create(ctx context.Context, user *identity.User, payload Payload) (*CreateEntryResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "entry", "create", telemetry.SpanAttrUserID, user.ID.String())
	defer span.End()

	validated, res := s.validator.Validate(payload)
	if res.Failed() {
		logger.L(ctx, s.logger).Warn("Entry validation failed",
			zap.String("stage", res.Stage),
			zap.String("reason", res.Message))
		return nil, s.reject(ctx, shared.NewDomainError(CodeValidationFailed, res.Message))
	}
	s.transition(ctx, validated.DocumentNr, stateValidated)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrDocumentNr, validated.DocumentNr,
		telemetry.SpanAttrTransactionType, validated.TransactionType.String(),
		telemetry.SpanAttrLineItems, len(validated.LineItems))

	resolution, err := s.resolver.Resolve(ctx, user.ID, validated)
	if err != nil {
		logger.L(ctx, s.logger).Error("Database error while resolving entry references",
			zap.String("document_nr", validated.DocumentNr),
			zap.Error(err))
		return nil, s.reject(ctx, shared.NewDomainErrorWithCause(CodeLookupFailed, msgLookupFailed, err))
	}
	if !resolution.OK() {
		logger.L(ctx, s.logger).Warn("Entry references could not be resolved",
			zap.String("document_nr", validated.DocumentNr),
			zap.String("reason", resolution.Message))
		return nil, s.reject(ctx, resolution.Err())
	}
	s.transition(ctx, validated.DocumentNr, stateResolved)

	entry, err := s.buildEntry(user, validated, resolution)
	if err != nil {
		return nil, s.reject(ctx, err)
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return s.persist(ctx, repos, entry)
	})
	if err != nil {
		s.transition(ctx, entry.DocumentNr, stateRolledBack)
		return nil, s.reject(ctx, s.classify(ctx, entry, err))
	}

	s.transition(ctx, entry.DocumentNr, stateCommitted)
	logger.L(ctx, s.logger).Info("Successfully created a new entry",
		zap.String("entry_id", entry.ID.String()),
		zap.String("document_nr", entry.DocumentNr),
		zap.String("transaction_type", entry.TransactionType.String()),
		zap.Int("line_items", len(entry.LineItems())))
	s.metrics.RecordEntryCreated(ctx, entry.TransactionType.String(), len(entry.LineItems()))
	telemetry.SetAttributes(span, telemetry.SpanAttrEntryID, entry.ID.String())

	return &CreateEntryResult{Message: msgEntryCreated, EntryID: entry.ID}, nil
}

// buildEntry maps the validated payload onto a new Entry field by field
func (s *EntryService) buildEntry(user *identity.User, v *ValidatedEntry, r Resolution) (*ledger.Entry, error) {
	specs := make([]ledger.LineItemSpec, len(v.LineItems))
	for i, li := range v.LineItems {
		specs[i] = ledger.LineItemSpec{
			ProductID:    r.Products[li.Product].ID,
			Quantity:     li.Quantity,
			PricePerUnit: li.PricePerUnit,
		}
	}

	entry, err := ledger.NewEntry(user.ID, r.Company.ID, v.Date, v.DocumentNr, v.TransactionType, specs)
	if err != nil {
		if de, ok := shared.AsDomainError(err); ok {
			return nil, shared.NewDomainError(CodeValidationFailed, de.Message)
		}
		return nil, err
	}
	return entry, nil
}

// persist performs every write of entry creation against the transaction handle.
// Any returned error rolls the whole transaction back.
func (s *EntryService) persist(ctx context.Context, repos TransactionalRepositories, entry *ledger.Entry) error {
	if err := repos.EntryRepo().Create(ctx, entry); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return duplicateDocument(entry.DocumentNr).Err()
		}
		return saveFailed(fmt.Errorf("insert entry: %w", err))
	}
	s.transition(ctx, entry.DocumentNr, stateEntryCreated)

	s.transition(ctx, entry.DocumentNr, stateLineItemsProcessing)
	now := s.now()
	for _, item := range entry.LineItems() {
		if err := s.processLineItem(ctx, repos, entry, item, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *EntryService) processLineItem(ctx context.Context, repos TransactionalRepositories, entry *ledger.Entry, item ledger.LineItem, now time.Time) error {
	if err := repos.EntryRepo().CreateLineItem(ctx, &item); err != nil {
		return saveFailed(fmt.Errorf("insert line item %d: %w", item.Position, err))
	}

	balance, err := repos.BalanceRepo().GetOrCreate(ctx, item.ProductID, entry.CompanyID, now)
	if err != nil {
		return saveFailed(fmt.Errorf("get or create balance: %w", err))
	}
	balance.Apply(entry.TransactionType, item.Quantity)
	balance.Touch(now)
	if err := repos.BalanceRepo().Save(ctx, balance); err != nil {
		return saveFailed(fmt.Errorf("save balance %s: %w", balance.ID, err))
	}

	product, err := repos.ProductRepo().FindByIDForUpdate(ctx, item.ProductID)
	if err != nil {
		return saveFailed(fmt.Errorf("lock product %s: %w", item.ProductID, err))
	}
	adjustment := inventory.AdjustStock(product, entry.TransactionType, item.Quantity)
	if !adjustment.OK() {
		logger.L(ctx, s.logger).Warn("Stock adjustment rejected",
			zap.String("document_nr", entry.DocumentNr),
			zap.String("product", adjustment.Product),
			zap.String("current", adjustment.Current.String()),
			zap.String("required", adjustment.Required.String()))
		return adjustment.Err()
	}
	if err := repos.ProductRepo().UpdateStock(ctx, product); err != nil {
		return saveFailed(fmt.Errorf("update stock of %s: %w", product.ID, err))
	}

	logger.L(ctx, s.logger).Debug("Processed line item",
		zap.String("entry_id", entry.ID.String()),
		zap.Int("position", item.Position),
		zap.String("balance_id", balance.ID.String()),
		zap.String("stock", product.Stock.String()))
	return nil
}

// classify turns a failed transaction into the error returned to the caller.
// Domain errors pass through; anything else, including a failed commit, becomes a generic save failure.
func (s *EntryService) classify(ctx context.Context, entry *ledger.Entry, err error) error {
	if de, ok := shared.AsDomainError(err); ok {
		if de.Err != nil {
			logger.L(ctx, s.logger).Error("Error saving entry",
				zap.String("document_nr", entry.DocumentNr),
				zap.String("code", de.Code),
				zap.Error(de.Err))
		}
		return de
	}

	if errors.Is(err, shared.ErrAlreadyExists) {
		return duplicateDocument(entry.DocumentNr).Err()
	}

	logger.L(ctx, s.logger).Error("Error saving entry",
		zap.String("document_nr", entry.DocumentNr),
		zap.Error(err))
	return saveFailed(err)
}

func (s *EntryService) reject(ctx context.Context, err error) error {
	code := "UNKNOWN"
	if de, ok := shared.AsDomainError(err); ok {
		code = de.Code
	}
	s.metrics.RecordEntryRejected(ctx, code)
	span := trace.SpanFromContext(ctx)
	telemetry.SetAttributes(span, telemetry.SpanAttrErrorCode, code)
	telemetry.RecordError(span, err)
	return err
}

func (s *EntryService) transition(ctx context.Context, documentNr string, to entryState) {
	logger.L(ctx, s.logger).Debug("Entry state transition",
		zap.String("document_nr", documentNr),
		zap.String("state", string(to)))
}

func saveFailed(cause error) *shared.DomainError {
	return shared.NewDomainErrorWithCause(CodeEntrySaveFailed, msgSaveFailed, cause)
}

// GetEntry returns one of the user's entries with its line items
func (s *EntryService) GetEntry(ctx context.Context, userID, id uuid.UUID) (*EntryResponse, error) {
	entry, err := s.entryRepo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, EntryNotFound(id.String())
		}
		return nil, err
	}
	resp := ToEntryResponse(entry)
	return &resp, nil
}

// ListEntries returns all of the user's entries, newest first
func (s *EntryService) ListEntries(ctx context.Context, userID uuid.UUID) ([]EntryResponse, error) {
	entries, err := s.entryRepo.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToEntryResponses(entries), nil
}

// EntryNotFound builds the not-found error for an entry reference
func EntryNotFound(ref string) *shared.DomainError {
	return shared.NewDomainError(CodeEntryNotFound, fmt.Sprintf("Entry of ID: %s not found.", ref))
}
