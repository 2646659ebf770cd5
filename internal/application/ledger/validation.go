package ledger

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/ledger"
)

// Payload is a decoded entry-creation request body.
// Numbers are expected as json.Number (decoder.UseNumber), but float64 and numeric strings are accepted too.
type Payload map[string]any

const (
	fieldDate            = "date"
	fieldDocumentNr      = "document_nr"
	fieldTransactionType = "transaction_type"
	fieldCompany         = "company"
	fieldLineItems       = "line_items"

	fieldQuantity     = "quantity"
	fieldPricePerUnit = "price_per_unit"
	fieldProduct      = "product"
)

var (
	entryFields    = []string{fieldDate, fieldDocumentNr, fieldTransactionType, fieldCompany, fieldLineItems}
	lineItemFields = []string{fieldQuantity, fieldPricePerUnit, fieldProduct}

	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidationKind tags the outcome of a validation stage
type ValidationKind int

const (
	// ValidationOK means the stage passed
	ValidationOK ValidationKind = iota
	// ValidationFailed means the stage rejected the payload
	ValidationFailed
)

// ValidationResult is returned by every stage of the pipeline
type ValidationResult struct {
	Kind    ValidationKind
	Stage   string
	Message string
}

// Failed reports whether the stage rejected the payload
func (r ValidationResult) Failed() bool {
	return r.Kind == ValidationFailed
}

func pass() ValidationResult {
	return ValidationResult{Kind: ValidationOK}
}

func fail(stage, format string, args ...any) ValidationResult {
	return ValidationResult{Kind: ValidationFailed, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// ValidatedLineItem is a line item whose shape and values passed validation.
// The product is still a name; the resolver turns it into an ID.
type ValidatedLineItem struct {
	Product      string
	Quantity     decimal.Decimal
	PricePerUnit decimal.Decimal
}

// ValidatedEntry is the typed form of a payload that passed every stage
type ValidatedEntry struct {
	Date            string
	DocumentNr      string
	TransactionType ledger.TransactionType
	Company         string
	LineItems       []ValidatedLineItem
}

// ProductNames returns the distinct product names in first-seen order
func (v *ValidatedEntry) ProductNames() []string {
	seen := make(map[string]struct{}, len(v.LineItems))
	names := make([]string, 0, len(v.LineItems))
	for _, li := range v.LineItems {
		if _, ok := seen[li.Product]; ok {
			continue
		}
		seen[li.Product] = struct{}{}
		names = append(names, li.Product)
	}
	return names
}

// Validator runs the fixed sequence of entry checks. It never touches the store.
type Validator struct {
	now func() time.Time
}

// NewValidator creates a Validator. A nil clock means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Validate runs all stages in order and stops at the first failure
func (v *Validator) Validate(p Payload) (*ValidatedEntry, ValidationResult) {
	stages := []func(Payload) ValidationResult{
		v.CheckShape,
		v.CheckDocumentNumber,
		v.CheckTransactionType,
		v.CheckDate,
		v.CheckCompany,
	}
	for _, stage := range stages {
		if res := stage(p); res.Failed() {
			return nil, res
		}
	}

	items, res := v.CheckLineItems(p)
	if res.Failed() {
		return nil, res
	}

	// Explicit field-by-field mapping; unknown keys were rejected by CheckShape.
	out := &ValidatedEntry{
		Date:            p[fieldDate].(string),
		DocumentNr:      p[fieldDocumentNr].(string),
		TransactionType: ledger.TransactionType(p[fieldTransactionType].(string)),
		Company:         strings.TrimSpace(p[fieldCompany].(string)),
		LineItems:       items,
	}
	return out, pass()
}

// CheckShape rejects empty payloads, unknown keys and missing keys
func (v *Validator) CheckShape(p Payload) ValidationResult {
	if len(p) == 0 {
		return fail("shape", "No JSON data found in the request body.")
	}

	if invalid := unknownKeys(p, entryFields); len(invalid) > 0 {
		return fail("shape", "Invalid field(s): %s while trying to create a new entry.", strings.Join(invalid, ", "))
	}

	var missing []string
	for _, f := range entryFields {
		if val, ok := p[f]; !ok || val == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return fail("shape", "Missing field(s): %s while trying to create a new entry.", strings.Join(missing, ", "))
	}
	return pass()
}

// CheckDocumentNumber validates the "WZ <n>/<month>/<year>" format and ranges
func (v *Validator) CheckDocumentNumber(p Payload) ValidationResult {
	raw, present := p[fieldDocumentNr]
	if !present || raw == nil {
		return fail("document_nr", "Document number is required.")
	}
	s, ok := raw.(string)
	if ok {
		if _, ok = ledger.ParseDocumentNumber(s, v.now()); ok {
			return pass()
		}
	}
	return fail("document_nr",
		"Invalid document number format: %v. The accepted format example for document nr.: 'WZ 123/02/2025', meaning: WZ (document nr)/(month)/year).",
		raw)
}

// CheckTransactionType accepts exactly Purchase or Supply
func (v *Validator) CheckTransactionType(p Payload) ValidationResult {
	if s, ok := p[fieldTransactionType].(string); ok && ledger.TransactionType(s).IsValid() {
		return pass()
	}
	return fail("transaction_type", "Invalid data in the 'transaction type' field. Should be %s.", ledger.AllowedTransactionTypes())
}

// CheckDate accepts any YYYY-MM-DD string. Calendar validity is not checked,
// so 2025-02-30 passes.
func (v *Validator) CheckDate(p Payload) ValidationResult {
	if s, ok := p[fieldDate].(string); ok && isoDatePattern.MatchString(s) {
		return pass()
	}
	return fail("date",
		"Invalid date format: %v while adding new entry. The accepted date format is ISO 8601, meaning: YYYY-MM-DD",
		p[fieldDate])
}

// CheckCompany requires the company reference to be a non-blank name
func (v *Validator) CheckCompany(p Payload) ValidationResult {
	if s, ok := p[fieldCompany].(string); ok && strings.TrimSpace(s) != "" {
		return pass()
	}
	return fail("company", "Invalid data in the 'company' field. Should be the name of an existing company.")
}

// CheckLineItems validates each line item in order. Product existence is left to the resolver.
func (v *Validator) CheckLineItems(p Payload) ([]ValidatedLineItem, ValidationResult) {
	list, ok := p[fieldLineItems].([]any)
	if !ok || len(list) == 0 {
		return nil, fail("line_items", "At least one line item is required to create an entry.")
	}

	items := make([]ValidatedLineItem, 0, len(list))
	for _, raw := range list {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fail("line_items", "Invalid line item: %v. Each line item must be an object.", raw)
		}

		qtyRaw, price := item[fieldQuantity], item[fieldPricePerUnit]
		if qtyRaw == nil || price == nil {
			return nil, fail("line_items", "Fields 'quantity' or 'current_price' cannot be empty.")
		}

		if invalid := unknownKeys(item, lineItemFields); len(invalid) > 0 {
			return nil, fail("line_items", "Invalid field(s): %s while trying to create new Entry.", strings.Join(invalid, ", "))
		}

		qty, qtyOK := toDecimal(qtyRaw)
		ppu, ppuOK := toDecimal(price)
		if !qtyOK || !ppuOK || !qty.IsPositive() || !ppu.IsPositive() {
			return nil, fail("line_items", "Non-positive values for price or quantity for the product in the new Entry.")
		}
		if !fitsAmount(qty) || !fitsAmount(ppu) {
			return nil, fail("line_items",
				"Price or quantity out of range: at most %d integer digits and %d decimal places are allowed.",
				amountIntegerDigits, amountScale)
		}

		product, _ := item[fieldProduct].(string)
		product = strings.TrimSpace(product)
		if product == "" {
			return nil, fail("line_items", "Field 'product' cannot be empty.")
		}

		items = append(items, ValidatedLineItem{Product: product, Quantity: qty, PricePerUnit: ppu})
	}
	return items, pass()
}

// unknownKeys returns the keys of m not in allowed, sorted for a stable message
func unknownKeys[V any](m map[string]V, allowed []string) []string {
	var out []string
	for k := range m {
		known := false
		for _, a := range allowed {
			if k == a {
				known = true
				break
			}
		}
		if !known {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Quantities and prices are stored as NUMERIC(18,4)
const (
	amountScale         = 4
	amountIntegerDigits = 14
)

var amountLimit = decimal.New(1, amountIntegerDigits)

// fitsAmount reports whether d is stored without rounding or overflow
func fitsAmount(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(amountScale)) && d.Abs().LessThan(amountLimit)
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}
