package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/internal/tasks"
	"github.com/dmitrymomot/academy/pkg/job"
	"github.com/dmitrymomot/academy/pkg/kv"
)

func TestCancelPendingOrders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := kv.NewMemory()

	bundle, err := locales.Bundle()
	require.NoError(t, err)

	placed := time.Now().Add(-100 * time.Hour)
	book := purchase.New(
		state.New(mem, purchase.Key, purchase.Seed, state.WithReread()),
		purchase.WithClock(func() time.Time { return placed }),
	)
	inbox := notification.NewInbox(state.New[notification.Notifications](mem, notification.Key, nil, state.WithReread()))

	p, err := book.AddPurchase(ctx, purchase.Order{
		UserID: 8, CourseID: 2, CourseTitle: "Go", Price: decimal.NewFromInt(10), PaymentMethod: purchase.MethodCash,
	})
	require.NoError(t, err)

	sweeper := purchase.New(state.New(mem, purchase.Key, purchase.Seed, state.WithReread()))
	task := tasks.NewCancelPendingOrders(sweeper, inbox, bundle, 72*time.Hour, "*/15 * * * *",
		func(context.Context, int) string { return "en" }, nil)

	m, err := job.NewManager(job.WithScheduledTask(task))
	require.NoError(t, err)
	require.NoError(t, m.Run(ctx, task.Name()))

	got, err := book.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, purchase.StatusCancelled, got.Status)

	notes := inbox.ForUser(ctx, 8)
	require.Len(t, notes, 1)
	require.Equal(t, "Order cancelled", notes[0].Title)
	require.Contains(t, notes[0].Message, p.ID)

	// A second run finds nothing left to cancel.
	require.NoError(t, m.Run(ctx, task.Name()))
	require.Len(t, inbox.ForUser(ctx, 8), 1)
}

type purgeCall struct {
	prefix string
	before time.Time
}

type recordingPurger struct {
	kv.Storage
	calls []purgeCall
}

func (p *recordingPurger) Purge(_ context.Context, prefix string, before time.Time) (int64, error) {
	p.calls = append(p.calls, purgeCall{prefix: prefix, before: before})
	return 3, nil
}

func TestPurgeVisitors_PassesPrefixAndCutoff(t *testing.T) {
	t.Parallel()

	storage := &recordingPurger{Storage: kv.NewMemory()}
	task := tasks.NewPurgeVisitors(storage, "visitor:", 720*time.Hour, "@daily", nil)
	require.Equal(t, "purge_visitors", task.Name())
	require.Equal(t, "@daily", task.Schedule())

	from := time.Now()
	require.NoError(t, task.Handle(context.Background()))
	to := time.Now()

	require.Len(t, storage.calls, 1)
	call := storage.calls[0]
	require.Equal(t, "visitor:", call.prefix)
	require.False(t, call.before.Before(from.Add(-720*time.Hour)))
	require.False(t, call.before.After(to.Add(-720*time.Hour)))
}

func TestPurgeVisitors_Skips(t *testing.T) {
	t.Parallel()

	t.Run("storage without purge", func(t *testing.T) {
		t.Parallel()
		task := tasks.NewPurgeVisitors(kv.Namespace(kv.NewMemory(), "app"), "visitor:", time.Hour, "@daily", nil)
		require.NoError(t, task.Handle(context.Background()))
	})

	t.Run("ttl disabled", func(t *testing.T) {
		t.Parallel()
		storage := &recordingPurger{Storage: kv.NewMemory()}
		task := tasks.NewPurgeVisitors(storage, "visitor:", 0, "@daily", nil)
		require.NoError(t, task.Handle(context.Background()))
		require.Empty(t, storage.calls)
	})
}

func TestPurgeVisitors_Memory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mem := kv.NewMemory()
	t.Cleanup(func() { _ = mem.Close() })

	require.NoError(t, mem.Set(ctx, "visitor:gone:theme", []byte(`"dark"`)))
	require.NoError(t, mem.Set(ctx, "visitor:back:theme", []byte(`"dark"`)))
	require.NoError(t, mem.Set(ctx, "site:purchases", []byte(`[]`)))
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, mem.Set(ctx, "visitor:back:lastSeen", []byte(`"now"`)))

	task := tasks.NewPurgeVisitors(mem, "visitor:", 150*time.Millisecond, "@daily", nil)
	m, err := job.NewManager(job.WithScheduledTask(task))
	require.NoError(t, err)
	require.NoError(t, m.Run(ctx, task.Name()))

	keys, err := mem.Keys(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"site:purchases", "visitor:back:lastSeen", "visitor:back:theme"}, keys)
}
