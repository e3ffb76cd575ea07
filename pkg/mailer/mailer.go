package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/academy/pkg/markdown"
)

var (
	ErrNoRecipient = errors.New("mailer: email must have at least one recipient")
	ErrNoSubject   = errors.New("mailer: email must have a subject")
	ErrNoContent   = errors.New("mailer: email must have content")
	ErrSendFailed  = errors.New("mailer: failed to send email")
)

// Email is a fully prepared message.
type Email struct {
	Subject string
	HTML    string
	Text    string
	From    string
	ReplyTo string
	To      []string
	Tags    map[string]string
}

// Validate checks the required fields.
func (e *Email) Validate() error {
	if len(e.To) == 0 {
		return ErrNoRecipient
	}
	if e.Subject == "" {
		return ErrNoSubject
	}
	if e.HTML == "" && e.Text == "" {
		return ErrNoContent
	}
	return nil
}

// Recipient formats an RFC 5322 address.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Sender delivers a prepared Email.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}

// Message is a Markdown email before rendering.
type Message struct {
	To       []string
	Subject  string
	Markdown string
	ReplyTo  string
	Tags     map[string]string
}

// Mailer renders Messages and sends them.
type Mailer struct {
	sender Sender
	from   string
}

// New creates a Mailer. from may be empty if the Sender fills it.
func New(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

// Send renders msg.Markdown to HTML and sends it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	html, err := markdown.Render(msg.Markdown)
	if err != nil {
		return err
	}

	email := &Email{
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    html,
		Text:    msg.Markdown,
		From:    m.from,
		ReplyTo: msg.ReplyTo,
		Tags:    msg.Tags,
	}
	if err := email.Validate(); err != nil {
		return err
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

// Noop logs instead of sending.
type Noop struct {
	Logger *slog.Logger
}

func (n Noop) Send(ctx context.Context, email *Email) error {
	if n.Logger != nil {
		n.Logger.InfoContext(ctx, "email not sent: mailer disabled",
			slog.Any("to", email.To),
			slog.String("subject", email.Subject),
		)
	}
	return nil
}

// Recorder keeps sent emails in memory.
type Recorder struct {
	mu   sync.Mutex
	sent []Email
}

func (r *Recorder) Send(_ context.Context, email *Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, *email)
	return nil
}

// Sent returns a copy of the recorded emails.
func (r *Recorder) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Email, len(r.sent))
	copy(out, r.sent)
	return out
}
