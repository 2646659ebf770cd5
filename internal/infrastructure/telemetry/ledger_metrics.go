package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter is nil")

// LedgerMetrics counts created and rejected ledger entries.
type LedgerMetrics struct {
	entriesCreated  *Counter
	entriesRejected *Counter
	lineItemsTotal  *Counter
	lineItems       *Histogram
	logger          *zap.Logger
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	lm := &LedgerMetrics{logger: logger}
	var err error
	if lm.entriesCreated, err = NewCounter(meter, "ledger_entries_created_total", "Entries committed by transaction type", "{entry}"); err != nil {
		return nil, err
	}
	if lm.entriesRejected, err = NewCounter(meter, "ledger_entries_rejected_total", "Entry submissions rejected by error code", "{entry}"); err != nil {
		return nil, err
	}
	if lm.lineItemsTotal, err = NewCounter(meter, "ledger_line_items_total", "Line items committed by transaction type", "{item}"); err != nil {
		return nil, err
	}
	lm.lineItems, err = NewHistogram(meter, HistogramOpts{
		Name:        "ledger_entry_line_items",
		Description: "Line items per committed entry",
		Unit:        "{item}",
		Boundaries:  LineItemBuckets,
	})
	if err != nil {
		return nil, err
	}
	return lm, nil
}

// RecordEntryCreated records a committed entry.
func (lm *LedgerMetrics) RecordEntryCreated(ctx context.Context, transactionType string, lineItems int) {
	attr := AttrTransactionType.String(transactionType)
	lm.entriesCreated.Inc(ctx, attr)
	lm.lineItemsTotal.Add(ctx, int64(lineItems), attr)
	lm.lineItems.Record(ctx, float64(lineItems), attr)
}

// RecordEntryRejected records a submission that did not commit.
func (lm *LedgerMetrics) RecordEntryRejected(ctx context.Context, code string) {
	if code == "" {
		code = "UNKNOWN"
	}
	lm.entriesRejected.Inc(ctx, AttrErrorCode.String(code))
}
