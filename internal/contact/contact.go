// Package contact accepts contact form submissions.
//
// A submission is stored, turned into a notification for every admin and,
// when a mailer is configured, emailed to the site's notify address.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/mailer"
	"github.com/dmitrymomot/academy/pkg/sanitizer"
)

// Key is the site storage key of received messages.
const Key = "contactMessages"

const (
	maxName    = 100
	minMessage = 10
	maxMessage = 5000
)

var (
	ErrInvalidName     = errors.New("contact: name is required")
	ErrInvalidEmail    = errors.New("contact: invalid email")
	ErrMessageTooShort = errors.New("contact: message is too short")
	ErrMessageTooLong  = errors.New("contact: message is too long")
	ErrNotFound        = errors.New("contact: message not found")
)

// Form is a submitted contact form.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Validate cleans the form in place and reports every invalid field.
func (f *Form) Validate() error {
	f.Name = sanitizer.Text(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = sanitizer.Text(f.Phone)
	f.Subject = sanitizer.Text(f.Subject)
	f.Message = sanitizer.StripTags(f.Message)

	var errs []error
	if f.Name == "" || utf8.RuneCountInString(f.Name) > maxName {
		errs = append(errs, ErrInvalidName)
	}
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		errs = append(errs, ErrInvalidEmail)
	}
	switch n := utf8.RuneCountInString(f.Message); {
	case n < minMessage:
		errs = append(errs, ErrMessageTooShort)
	case n > maxMessage:
		errs = append(errs, ErrMessageTooLong)
	}
	return errors.Join(errs...)
}

// Message is a stored submission.
type Message struct {
	ID uuid.UUID `json:"id"`
	Form
	Handled   bool      `json:"handled"`
	CreatedAt time.Time `json:"createdAt"`
}

// Desk receives contact messages.
type Desk struct {
	store    *state.Store[[]Message]
	inbox    *notification.Inbox
	admins   func(ctx context.Context) []int
	mailer   *mailer.Mailer
	notifyTo func(ctx context.Context) string
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Desk.
type Option func(*Desk)

// WithAdmins sets the function listing the user ids to notify.
func WithAdmins(fn func(ctx context.Context) []int) Option {
	return func(d *Desk) { d.admins = fn }
}

// WithMailer emails every submission to the address returned by to.
// An empty address skips the email.
func WithMailer(m *mailer.Mailer, to func(ctx context.Context) string) Option {
	return func(d *Desk) {
		d.mailer = m
		d.notifyTo = to
	}
}

// WithLogger sets the logger for delivery failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Desk) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Desk) { d.now = now }
}

// NewDesk creates a Desk storing messages in store and notifying through inbox.
func NewDesk(store *state.Store[[]Message], inbox *notification.Inbox, opts ...Option) *Desk {
	d := &Desk{
		store:  store,
		inbox:  inbox,
		admins: func(context.Context) []int { return nil },
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Submit validates and stores f, then notifies admins. Delivery failures are
// logged; only validation and storage mutation errors are returned.
func (d *Desk) Submit(ctx context.Context, f Form) (Message, error) {
	if err := f.Validate(); err != nil {
		return Message{}, err
	}

	msg := Message{ID: uuid.New(), Form: f, CreatedAt: d.now().UTC()}
	if _, err := d.store.Update(ctx, func(list *[]Message) error {
		*list = append(*list, msg)
		return nil
	}); err != nil {
		return Message{}, err
	}

	title := "Contact: " + f.Name
	if f.Subject != "" {
		title += " (" + f.Subject + ")"
	}
	for _, adminID := range d.admins(ctx) {
		if _, err := d.inbox.Add(ctx, notification.New{
			UserID:  notification.For(adminID),
			Title:   title,
			Message: f.Message,
			Type:    notification.TypeInfo,
		}); err != nil {
			d.logger.ErrorContext(ctx, "contact: notify admin failed",
				slog.Int("admin_id", adminID),
				slog.String("error", err.Error()),
			)
		}
	}

	d.email(ctx, msg)
	return msg, nil
}

// List returns received messages, newest first.
func (d *Desk) List(ctx context.Context) []Message {
	list := d.store.Get(ctx)
	if list == nil {
		return []Message{}
	}
	slices.SortStableFunc(list, func(a, b Message) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return list
}

// MarkHandled flags message id as handled.
func (d *Desk) MarkHandled(ctx context.Context, id uuid.UUID) error {
	_, err := d.store.Update(ctx, func(list *[]Message) error {
		i := slices.IndexFunc(*list, func(m Message) bool { return m.ID == id })
		if i < 0 {
			return ErrNotFound
		}
		(*list)[i].Handled = true
		return nil
	})
	return err
}

func (d *Desk) email(ctx context.Context, msg Message) {
	if d.mailer == nil || d.notifyTo == nil {
		return
	}
	to := d.notifyTo(ctx)
	if to == "" {
		return
	}

	var body strings.Builder
	fmt.Fprintf(&body, "**From:** %s <%s>\n\n", msg.Name, msg.Email)
	if msg.Phone != "" {
		fmt.Fprintf(&body, "**Phone:** %s\n\n", msg.Phone)
	}
	body.WriteString(msg.Message)

	subject := "New contact message from " + msg.Name
	if msg.Subject != "" {
		subject = msg.Subject + " | " + msg.Name
	}

	if err := d.mailer.Send(ctx, mailer.Message{
		To:       []string{to},
		Subject:  subject,
		Markdown: body.String(),
		ReplyTo:  msg.Email,
		Tags:     map[string]string{"kind": "contact"},
	}); err != nil {
		d.logger.ErrorContext(ctx, "contact: email failed",
			slog.String("message_id", msg.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}
