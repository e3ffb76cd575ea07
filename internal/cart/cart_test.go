package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/cart"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/kv"
)

func item(id int, price int64) cart.Item {
	return cart.Item{ID: id, Title: "Course", Price: decimal.NewFromInt(price)}
}

func newCart(t *testing.T, storage kv.Storage, opts ...state.Option) *cart.Cart {
	t.Helper()
	return cart.New(state.New[cart.Items](storage, cart.Key, nil, opts...))
}

func TestCart_AddIncrementsQuantity(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newCart(t, kv.NewMemory())

	_, err := c.Add(ctx, item(1, 100))
	require.NoError(t, err)
	items, err := c.Add(ctx, item(1, 100))
	require.NoError(t, err)

	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, 2, c.Count(ctx))
	require.True(t, decimal.NewFromInt(200).Equal(c.Total(ctx)))
}

func TestCart_Operations(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	c := newCart(t, kv.NewMemory())

	require.Empty(t, c.Items(ctx))
	require.NotNil(t, c.Items(ctx))

	_, err := c.Add(ctx, item(1, 100))
	require.NoError(t, err)
	_, err = c.Add(ctx, cart.Item{ID: 2, Price: decimal.NewFromInt(50), Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, 4, c.Count(ctx))
	require.True(t, decimal.NewFromInt(250).Equal(c.Total(ctx)))

	_, err = c.SetQuantity(ctx, 2, 1)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(150).Equal(c.Total(ctx)))

	items, err := c.SetQuantity(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = c.Remove(ctx, 2)
	require.ErrorIs(t, err, cart.ErrItemNotFound)
	_, err = c.SetQuantity(ctx, 7, 2)
	require.ErrorIs(t, err, cart.ErrItemNotFound)

	items, err = c.Remove(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, items)

	_, err = c.Add(ctx, cart.Item{ID: 3, Price: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, cart.ErrInvalidPrice)
	require.Empty(t, c.Items(ctx))
}

func TestCart_PersistsAndPublishes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := kv.NewMemory()
	bus := events.NewBus()

	var got []cart.Items
	events.On(bus, events.CartUpdated, func(_ context.Context, _ events.Event, items cart.Items) {
		got = append(got, items)
	})

	c := newCart(t, mem, state.WithEvents(bus, events.CartUpdated, "v1"))
	_, err := c.Add(ctx, item(1, 100))
	require.NoError(t, err)
	require.NoError(t, c.Clear(ctx))

	require.Len(t, got, 2)
	require.Len(t, got[0], 1)
	require.Empty(t, got[1])

	_, err = c.Add(ctx, item(5, 10))
	require.NoError(t, err)

	reloaded := newCart(t, mem)
	items := reloaded.Items(ctx)
	require.Len(t, items, 1)
	require.Equal(t, 5, items[0].ID)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := cart.Summarize(nil)
	require.NotNil(t, s.Items)
	require.Zero(t, s.Count)
	require.True(t, s.Total.IsZero())
}
