// Package cart holds a shopper's cart lines between browsing and checkout.
package cart

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/aswathylr-builds/order-confirmation/models"
)

var (
	ErrStockLimit = errors.New("maximum stock reached")
	ErrNotInCart  = errors.New("product not in cart")
)

// Cart is safe for concurrent use
type Cart struct {
	mu    sync.Mutex
	items []models.CartItem
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// Add puts quantity of product in the cart, merging with an existing line.
// The line never exceeds product stock; ErrStockLimit means nothing changed.
func (c *Cart) Add(product models.Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, item := range c.items {
		if item.Product.ID != product.ID {
			continue
		}
		updated := min(item.Quantity+quantity, product.Stock)
		if updated == item.Quantity {
			return ErrStockLimit
		}
		c.items[i].Quantity = updated
		return nil
	}

	if product.Stock < 1 {
		return ErrStockLimit
	}
	c.items = append(c.items, models.CartItem{Product: product, Quantity: min(quantity, product.Stock)})
	return nil
}

// Remove drops the line for productID
func (c *Cart) Remove(productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return ErrNotInCart
}

// UpdateQuantity sets a line's quantity, clamped to [1, stock]
func (c *Cart) UpdateQuantity(productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.Product.ID == productID {
			c.items[i].Quantity = min(max(1, quantity), item.Product.Stock)
			return nil
		}
	}
	return ErrNotInCart
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Items returns a snapshot of the cart lines in insertion order
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total is the discounted subtotal
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items() {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount sums quantities across lines
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items() {
		count += item.Quantity
	}
	return count
}

// Quantity returns the quantity held for productID
func (c *Cart) Quantity(productID string) int {
	for _, item := range c.Items() {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}
