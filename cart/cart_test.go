package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswathylr-builds/order-confirmation/models"
)

var (
	widget = models.Product{ID: "p1", Name: "Widget", Price: 1000, Stock: 5}
	lamp   = models.Product{ID: "p2", Name: "Lamp", Price: 2000, Discount: 10, Stock: 2}
)

func TestAdd_MergesAndClampsToStock(t *testing.T) {
	c := New()

	require.NoError(t, c.Add(widget, 2))
	require.NoError(t, c.Add(widget, 10))

	assert.Equal(t, 5, c.Quantity("p1"))
	assert.ErrorIs(t, c.Add(widget, 1), ErrStockLimit)
	assert.Len(t, c.Items(), 1)
}

func TestAdd_OutOfStock(t *testing.T) {
	c := New()

	err := c.Add(models.Product{ID: "p9", Stock: 0}, 1)

	assert.ErrorIs(t, err, ErrStockLimit)
	assert.Empty(t, c.Items())
}

func TestUpdateQuantity_Clamps(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(lamp, 1))

	require.NoError(t, c.UpdateQuantity("p2", 0))
	assert.Equal(t, 1, c.Quantity("p2"))

	require.NoError(t, c.UpdateQuantity("p2", 9))
	assert.Equal(t, 2, c.Quantity("p2"))

	assert.ErrorIs(t, c.UpdateQuantity("nope", 1), ErrNotInCart)
}

func TestRemoveAndClear(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(widget, 1))
	require.NoError(t, c.Add(lamp, 1))

	require.NoError(t, c.Remove("p1"))
	assert.ErrorIs(t, c.Remove("p1"), ErrNotInCart)
	assert.Equal(t, []string{"p2"}, ids(c.Items()))

	c.Clear()
	assert.Empty(t, c.Items())
	assert.Zero(t, c.ItemCount())
}

func TestTotals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(widget, 2))
	require.NoError(t, c.Add(lamp, 1))

	assert.True(t, c.Total().Equal(decimal.NewFromInt(3800)), c.Total().String())
	assert.Equal(t, 3, c.ItemCount())
}

func TestItems_Snapshot(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(widget, 1))

	items := c.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, c.Quantity("p1"))
}

func ids(items []models.CartItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Product.ID)
	}
	return out
}
