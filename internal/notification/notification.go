// Package notification stores in-app notifications.
//
// Notifications live in one site-wide list. A notification without a user id
// is a broadcast shown to everyone. The read flag belongs to the notification,
// so reading a broadcast marks it read for all users.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/events"
)

// Key is the site storage key of the notification list.
const Key = "notifications"

var (
	ErrNotFound     = errors.New("notification: not found")
	ErrEmptyTitle   = errors.New("notification: title is required")
	ErrEmptyMessage = errors.New("notification: message is required")
	ErrInvalidType  = errors.New("notification: invalid type")
)

type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeOrder   Type = "order"
)

func (t Type) Valid() bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeOrder:
		return true
	}
	return false
}

// Notification is one message. A nil UserID is a broadcast.
type Notification struct {
	ID      int64     `json:"id"`
	UserID  *int      `json:"userId"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
	Read    bool      `json:"read"`
	Type    Type      `json:"type"`
}

// VisibleTo reports whether userID sees n.
func (n Notification) VisibleTo(userID int) bool {
	return n.UserID == nil || *n.UserID == userID
}

// Notifications is the stored list.
type Notifications []Notification

// Action names what happened in a Change.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRead    Action = "read"
	ActionCleared Action = "cleared"
)

// Change is the payload of events.NotificationsUpdated.
type Change struct {
	Action Action `json:"action"`
	ID     int64  `json:"id,omitempty"`
	UserID *int   `json:"userId,omitempty"`
}

// New is the input of Add.
type New struct {
	UserID  *int
	Title   string
	Message string
	Type    Type
}

// For returns a pointer to id for New.UserID.
func For(userID int) *int { return &userID }

// Inbox manages notifications.
type Inbox struct {
	store  *state.Store[Notifications]
	bus    *events.Bus
	now    func() time.Time
	logger *slog.Logger
}

// Option configures an Inbox.
type Option func(*Inbox)

// WithEvents publishes a Change on bus after every mutation.
func WithEvents(bus *events.Bus) Option {
	return func(in *Inbox) { in.bus = bus }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(in *Inbox) { in.now = now }
}

// WithLogger sets the logger for publish failures.
func WithLogger(l *slog.Logger) Option {
	return func(in *Inbox) {
		if l != nil {
			in.logger = l
		}
	}
}

// NewInbox wraps the notification store. The store should be created WithReread.
func NewInbox(store *state.Store[Notifications], opts ...Option) *Inbox {
	in := &Inbox{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Store exposes the underlying store for hydration.
func (in *Inbox) Store() *state.Store[Notifications] { return in.store }

// Add stores a new unread notification. Ids are millisecond timestamps,
// bumped past the largest existing id so they stay unique.
func (in *Inbox) Add(ctx context.Context, n New) (Notification, error) {
	n.Title = strings.TrimSpace(n.Title)
	n.Message = strings.TrimSpace(n.Message)
	if n.Type == "" {
		n.Type = TypeInfo
	}
	switch {
	case n.Title == "":
		return Notification{}, ErrEmptyTitle
	case n.Message == "":
		return Notification{}, ErrEmptyMessage
	case !n.Type.Valid():
		return Notification{}, ErrInvalidType
	}

	var out Notification
	_, err := in.store.Update(ctx, func(list *Notifications) error {
		now := in.now().UTC()
		id := now.UnixMilli()
		for _, existing := range *list {
			if existing.ID >= id {
				id = existing.ID + 1
			}
		}
		out = Notification{
			ID:      id,
			UserID:  n.UserID,
			Title:   n.Title,
			Message: n.Message,
			Time:    now,
			Type:    n.Type,
		}
		*list = append(*list, out)
		return nil
	})
	if err != nil {
		return Notification{}, err
	}
	in.publish(ctx, Change{Action: ActionAdded, ID: out.ID, UserID: out.UserID})
	return out, nil
}

// All returns every notification, newest first.
func (in *Inbox) All(ctx context.Context) []Notification {
	out := []Notification(in.store.Get(ctx))
	if out == nil {
		out = []Notification{}
	}
	sortNewestFirst(out)
	return out
}

// ForUser returns the notifications userID sees, newest first.
func (in *Inbox) ForUser(ctx context.Context, userID int) []Notification {
	out := make([]Notification, 0)
	for _, n := range in.store.Get(ctx) {
		if n.VisibleTo(userID) {
			out = append(out, n)
		}
	}
	sortNewestFirst(out)
	return out
}

// UnreadCount counts the unread notifications userID sees.
func (in *Inbox) UnreadCount(ctx context.Context, userID int) int {
	count := 0
	for _, n := range in.store.Get(ctx) {
		if n.VisibleTo(userID) && !n.Read {
			count++
		}
	}
	return count
}

// MarkRead marks one notification read. Other notifications are untouched.
func (in *Inbox) MarkRead(ctx context.Context, id int64) error {
	var target Notification
	_, err := in.store.Update(ctx, func(list *Notifications) error {
		i := slices.IndexFunc(*list, func(n Notification) bool { return n.ID == id })
		if i < 0 {
			return ErrNotFound
		}
		(*list)[i].Read = true
		target = (*list)[i]
		return nil
	})
	if err != nil {
		return err
	}
	in.publish(ctx, Change{Action: ActionRead, ID: id, UserID: target.UserID})
	return nil
}

// MarkReadFor marks a notification read only if userID can see it.
func (in *Inbox) MarkReadFor(ctx context.Context, userID int, id int64) error {
	for _, n := range in.store.Get(ctx) {
		if n.ID == id {
			if !n.VisibleTo(userID) {
				return ErrNotFound
			}
			return in.MarkRead(ctx, id)
		}
	}
	return ErrNotFound
}

// MarkAllRead marks every notification userID sees as read.
func (in *Inbox) MarkAllRead(ctx context.Context, userID int) error {
	_, err := in.store.Update(ctx, func(list *Notifications) error {
		for i := range *list {
			if (*list)[i].VisibleTo(userID) {
				(*list)[i].Read = true
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	in.publish(ctx, Change{Action: ActionRead, UserID: For(userID)})
	return nil
}

// Clear removes all notifications from memory and storage.
func (in *Inbox) Clear(ctx context.Context) {
	in.store.Clear(ctx)
	in.publish(ctx, Change{Action: ActionCleared})
}

// publish scopes user-addressed changes to that user; broadcasts go to all.
func (in *Inbox) publish(ctx context.Context, c Change) {
	if in.bus == nil {
		return
	}
	scope := ""
	if c.UserID != nil {
		scope = events.UserScope(*c.UserID)
	}
	if err := in.bus.Emit(ctx, events.NotificationsUpdated, scope, c); err != nil {
		in.logger.ErrorContext(ctx, "notification: publish failed", slog.String("error", err.Error()))
	}
}

func sortNewestFirst(list []Notification) {
	slices.SortStableFunc(list, func(a, b Notification) int {
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}
