package inventory

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/wzledger/backend/internal/domain/catalog"
	"github.com/wzledger/backend/internal/domain/ledger"
	"github.com/wzledger/backend/internal/domain/shared"
)

// StockOutcome tags the result of a stock adjustment
type StockOutcome int

const (
	// StockAdjusted means the product stock was changed
	StockAdjusted StockOutcome = iota
	// StockInsufficient means a supply asked for more than is on hand; stock is untouched
	StockInsufficient
	// StockRejected means the adjustment input itself was invalid
	StockRejected
)

// StockAdjustment is the tagged result of AdjustStock
type StockAdjustment struct {
	Outcome  StockOutcome
	Product  string
	Current  decimal.Decimal
	Required decimal.Decimal
	Message  string
}

// OK reports whether the stock was adjusted
func (a StockAdjustment) OK() bool {
	return a.Outcome == StockAdjusted
}

// Err converts a failed adjustment into a domain error, nil on success
func (a StockAdjustment) Err() error {
	switch a.Outcome {
	case StockAdjusted:
		return nil
	case StockInsufficient:
		return shared.NewDomainError(shared.ErrInsufficientStock.Code, a.Message)
	default:
		return shared.NewDomainError("INVALID_STOCK_ADJUSTMENT", a.Message)
	}
}

// AdjustStock applies a signed delta to product stock based on transaction direction.
// Purchase adds; Supply subtracts and never lets stock go below zero.
func AdjustStock(product *catalog.Product, txType ledger.TransactionType, quantity decimal.Decimal) StockAdjustment {
	res := StockAdjustment{
		Product:  product.Name,
		Current:  product.Stock,
		Required: quantity,
	}

	var err error
	switch txType {
	case ledger.TransactionPurchase:
		err = product.IncreaseStock(quantity)
	case ledger.TransactionSupply:
		err = product.DeductStock(quantity)
	default:
		res.Outcome = StockRejected
		res.Message = fmt.Sprintf("Unknown transaction type: %s.", txType)
		return res
	}

	switch {
	case err == nil:
		res.Outcome = StockAdjusted
		res.Current = product.Stock
	case errors.Is(err, shared.ErrInsufficientStock):
		res.Outcome = StockInsufficient
		res.Message = fmt.Sprintf("Insufficient stock for product '%s'. Current stock: %s, required: %s.",
			product.Name, product.Stock.String(), quantity.String())
	default:
		res.Outcome = StockRejected
		res.Message = err.Error()
	}
	return res
}
