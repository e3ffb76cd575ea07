// Package cart implements a visitor's shopping cart.
//
// Items are keyed by course id. Adding an id already in the cart increments
// its quantity instead of adding a second line.
package cart

import (
	"context"
	"errors"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/dmitrymomot/academy/internal/state"
)

// Key is the visitor storage key of the cart.
const Key = "cartItems"

var (
	ErrItemNotFound    = errors.New("cart: item not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be positive")
	ErrInvalidPrice    = errors.New("cart: price must not be negative")
	ErrInvalidItem     = errors.New("cart: item id is required")
)

// Item is one cart line.
type Item struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Items is the stored cart.
type Items []Item

func (items Items) Validate() error {
	for _, it := range items {
		if it.ID <= 0 {
			return ErrInvalidItem
		}
		if it.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if it.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}
	return nil
}

func (items Items) index(id int) int {
	return slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
}

// Cart is one visitor's cart.
type Cart struct {
	store *state.Store[Items]
}

// New wraps a cart store. The store should publish events.CartUpdated.
func New(store *state.Store[Items]) *Cart {
	return &Cart{store: store}
}

// Store exposes the underlying store for hydration.
func (c *Cart) Store() *state.Store[Items] { return c.store }

// Items returns the cart lines. The result is never nil.
func (c *Cart) Items(ctx context.Context) Items {
	items := c.store.Get(ctx)
	if items == nil {
		return Items{}
	}
	return items
}

// Add puts item into the cart. A zero quantity counts as one; an existing id
// has its quantity increased.
func (c *Cart) Add(ctx context.Context, item Item) (Items, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return c.store.Update(ctx, func(items *Items) error {
		if i := items.index(item.ID); i >= 0 {
			(*items)[i].Quantity += item.Quantity
			return nil
		}
		*items = append(*items, item)
		return nil
	})
}

// Remove deletes the line with id.
func (c *Cart) Remove(ctx context.Context, id int) (Items, error) {
	return c.store.Update(ctx, func(items *Items) error {
		i := items.index(id)
		if i < 0 {
			return ErrItemNotFound
		}
		*items = slices.Delete(*items, i, i+1)
		return nil
	})
}

// SetQuantity changes a line's quantity. A quantity of zero or less removes it.
func (c *Cart) SetQuantity(ctx context.Context, id, quantity int) (Items, error) {
	return c.store.Update(ctx, func(items *Items) error {
		i := items.index(id)
		if i < 0 {
			return ErrItemNotFound
		}
		if quantity <= 0 {
			*items = slices.Delete(*items, i, i+1)
			return nil
		}
		(*items)[i].Quantity = quantity
		return nil
	})
}

// Clear empties the cart.
func (c *Cart) Clear(ctx context.Context) error {
	return c.store.Set(ctx, Items{})
}

// Total sums price times quantity over all lines.
func (c *Cart) Total(ctx context.Context) decimal.Decimal {
	return Total(c.Items(ctx))
}

// Count sums the quantities.
func (c *Cart) Count(ctx context.Context) int {
	return Count(c.Items(ctx))
}

// Total sums the subtotals of items.
func Total(items Items) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Count sums the quantities of items.
func Count(items Items) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

// Summary is the cart as returned to clients.
type Summary struct {
	Items Items           `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Summarize builds a Summary of items.
func Summarize(items Items) Summary {
	if items == nil {
		items = Items{}
	}
	return Summary{Items: items, Total: Total(items), Count: Count(items)}
}
