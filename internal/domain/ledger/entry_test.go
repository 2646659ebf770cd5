package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	userID, companyID := uuid.New(), uuid.New()
	widget, gadget := uuid.New(), uuid.New()

	specs := []LineItemSpec{
		{ProductID: widget, Quantity: decimal.NewFromInt(10), PricePerUnit: decimal.NewFromInt(5)},
		{ProductID: gadget, Quantity: decimal.RequireFromString("2.5"), PricePerUnit: decimal.NewFromInt(4)},
	}

	t.Run("builds line items in input order", func(t *testing.T) {
		e, err := NewEntry(userID, companyID, "2025-02-07", "WZ 7/01/2025", TransactionPurchase, specs)
		require.NoError(t, err)

		items := e.LineItems()
		require.Len(t, items, 2)
		for i, li := range items {
			assert.Equal(t, e.ID, li.EntryID)
			assert.Equal(t, i, li.Position)
			assert.NotEqual(t, uuid.Nil, li.ID)
		}
		assert.Equal(t, widget, items[0].ProductID)
		assert.Equal(t, gadget, items[1].ProductID)
		assert.True(t, e.Total().Equal(decimal.NewFromInt(60)))
	})

	t.Run("line items cannot be appended through the accessor", func(t *testing.T) {
		e, err := NewEntry(userID, companyID, "2025-02-07", "WZ 7/01/2025", TransactionPurchase, specs)
		require.NoError(t, err)

		items := e.LineItems()
		_ = append(items, LineItem{})
		items[0].Quantity = decimal.NewFromInt(999)

		assert.Len(t, e.LineItems(), 2)
		assert.True(t, e.LineItems()[0].Quantity.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rejects empty line items", func(t *testing.T) {
		_, err := NewEntry(userID, companyID, "2025-02-07", "WZ 7/01/2025", TransactionSupply, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		bad := []LineItemSpec{{ProductID: widget, Quantity: decimal.Zero, PricePerUnit: decimal.NewFromInt(1)}}
		_, err := NewEntry(userID, companyID, "2025-02-07", "WZ 7/01/2025", TransactionSupply, bad)
		assert.EqualError(t, err, "Non-positive values for price or quantity for the product in the new Entry.")
	})

	t.Run("rejects unknown transaction type", func(t *testing.T) {
		_, err := NewEntry(userID, companyID, "2025-02-07", "WZ 7/01/2025", TransactionType("Refund"), specs)
		assert.Error(t, err)
	})
}
