// Package tasks holds the periodic maintenance jobs run by pkg/job.
package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/pkg/i18n"
	"github.com/dmitrymomot/academy/pkg/kv"
)

// CancelPendingOrders cancels cash orders left unpaid for longer than TTL
// and tells their owners.
type CancelPendingOrders struct {
	book     *purchase.Book
	inbox    *notification.Inbox
	bundle   *i18n.Bundle
	ttl      time.Duration
	schedule string
	language func(ctx context.Context, userID int) string
	logger   *slog.Logger
}

// NewCancelPendingOrders creates the task. language picks the notification
// language per user; nil uses the bundle default.
func NewCancelPendingOrders(
	book *purchase.Book,
	inbox *notification.Inbox,
	bundle *i18n.Bundle,
	ttl time.Duration,
	schedule string,
	language func(ctx context.Context, userID int) string,
	logger *slog.Logger,
) *CancelPendingOrders {
	if language == nil {
		language = func(context.Context, int) string { return bundle.DefaultLanguage() }
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CancelPendingOrders{
		book:     book,
		inbox:    inbox,
		bundle:   bundle,
		ttl:      ttl,
		schedule: schedule,
		language: language,
		logger:   logger,
	}
}

func (t *CancelPendingOrders) Name() string     { return "cancel_pending_orders" }
func (t *CancelPendingOrders) Schedule() string { return t.schedule }

func (t *CancelPendingOrders) Handle(ctx context.Context) error {
	cancelled, err := t.book.CancelStalePending(ctx, t.ttl)
	if err != nil {
		return err
	}
	for _, p := range cancelled {
		lang := t.language(ctx, p.UserID)
		if _, err := t.inbox.Add(ctx, notification.New{
			UserID:  notification.For(p.UserID),
			Title:   t.bundle.T(lang, locales.Notifications, "order_cancelled.title"),
			Message: t.bundle.T(lang, locales.Notifications, "order_cancelled.message", i18n.M{"id": p.ID}),
			Type:    notification.TypeWarning,
		}); err != nil {
			t.logger.ErrorContext(ctx, "notify cancelled order failed",
				slog.String("order_id", p.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	if len(cancelled) > 0 {
		t.logger.InfoContext(ctx, "stale pending orders cancelled", slog.Int("count", len(cancelled)))
	}
	return nil
}

// PurgeVisitors drops visitor namespaces with no write for longer than TTL.
// A namespace goes as a whole, so one fresh key (the heartbeat written by
// every returning visitor) keeps all of it. Storage without kv.Purger is
// skipped.
type PurgeVisitors struct {
	storage  kv.Storage
	prefix   string
	ttl      time.Duration
	schedule string
	now      func() time.Time
	logger   *slog.Logger
}

// NewPurgeVisitors creates the task for keys under prefix.
func NewPurgeVisitors(storage kv.Storage, prefix string, ttl time.Duration, schedule string, logger *slog.Logger) *PurgeVisitors {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PurgeVisitors{
		storage:  storage,
		prefix:   prefix,
		ttl:      ttl,
		schedule: schedule,
		now:      time.Now,
		logger:   logger,
	}
}

func (t *PurgeVisitors) Name() string     { return "purge_visitors" }
func (t *PurgeVisitors) Schedule() string { return t.schedule }

func (t *PurgeVisitors) Handle(ctx context.Context) error {
	p, ok := t.storage.(kv.Purger)
	if !ok || t.ttl <= 0 {
		return nil
	}
	n, err := p.Purge(ctx, t.prefix, t.now().Add(-t.ttl))
	if err != nil {
		return err
	}
	if n > 0 {
		t.logger.InfoContext(ctx, "stale visitor state purged", slog.Int64("keys", n))
	}
	return nil
}
