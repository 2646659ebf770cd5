package ledger

import "strings"

// TransactionType is the direction of an entry
type TransactionType string

const (
	// TransactionPurchase brings goods in, stock increases
	TransactionPurchase TransactionType = "Purchase"
	// TransactionSupply sends goods out, stock decreases
	TransactionSupply TransactionType = "Supply"
)

// TransactionTypes lists the accepted values in display order
var TransactionTypes = []TransactionType{TransactionPurchase, TransactionSupply}

// IsValid reports whether t is a known transaction type. Matching is case-sensitive.
func (t TransactionType) IsValid() bool {
	for _, known := range TransactionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String implements fmt.Stringer
func (t TransactionType) String() string {
	return string(t)
}

// AllowedTransactionTypes renders the accepted values as "Purchase or Supply"
func AllowedTransactionTypes() string {
	names := make([]string, len(TransactionTypes))
	for i, t := range TransactionTypes {
		names[i] = string(t)
	}
	return strings.Join(names, " or ")
}
