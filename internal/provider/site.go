package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/catalog"
	"github.com/dmitrymomot/academy/internal/checkout"
	"github.com/dmitrymomot/academy/internal/contact"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/settings"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/internal/teacher"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/i18n"
	"github.com/dmitrymomot/academy/pkg/kv"
	"github.com/dmitrymomot/academy/pkg/mailer"
)

const (
	// SiteNamespace holds data shared by all visitors.
	SiteNamespace = "site"
	// VisitorPrefix is prepended to a visitor id to form its namespace.
	VisitorPrefix = "visitor:"
)

// Site is the set of shared services.
type Site struct {
	Users    *auth.Directory
	Catalog  *catalog.Catalog
	Orders   *purchase.Book
	Inbox    *notification.Inbox
	Teachers *teacher.Roster
	Content  *settings.Site
	Contact  *contact.Desk
	Checkout *checkout.Service

	storage kv.Storage
	bus     *events.Bus
	bundle  *i18n.Bundle
	logger  *slog.Logger
	cfg     *siteConfig
}

type siteConfig struct {
	logger        *slog.Logger
	bcryptCost    int
	mailer        *mailer.Mailer
	touchInterval time.Duration
	now           func() time.Time
}

// SiteOption configures a Site.
type SiteOption func(*siteConfig)

// WithLogger sets the logger passed to every store and service.
func WithLogger(l *slog.Logger) SiteOption {
	return func(c *siteConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBcryptCost sets the password hashing cost for seeded and new accounts.
func WithBcryptCost(cost int) SiteOption {
	return func(c *siteConfig) { c.bcryptCost = cost }
}

// WithMailer emails contact form submissions to the settings notify address.
func WithMailer(m *mailer.Mailer) SiteOption {
	return func(c *siteConfig) { c.mailer = m }
}

// WithTouchInterval sets how often a returning visitor's heartbeat is
// rewritten. Visitor state is purged after the visitor TTL without a write,
// so the interval must stay well below it.
// Default: 1 hour.
func WithTouchInterval(d time.Duration) SiteOption {
	return func(c *siteConfig) {
		if d > 0 {
			c.touchInterval = d
		}
	}
}

// WithClock overrides the heartbeat clock.
func WithClock(now func() time.Time) SiteOption {
	return func(c *siteConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// NewSite builds the shared services over storage. storage is the raw
// backend; NewSite and Visitor namespace it themselves.
func NewSite(storage kv.Storage, bus *events.Bus, bundle *i18n.Bundle, opts ...SiteOption) *Site {
	cfg := &siteConfig{
		logger:        slog.New(slog.DiscardHandler),
		touchInterval: time.Hour,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ns := kv.Namespace(storage, SiteNamespace)
	log := state.WithLogger(cfg.logger)

	s := &Site{
		storage: storage,
		bus:     bus,
		bundle:  bundle,
		logger:  cfg.logger,
		cfg:     cfg,
	}

	dirOpts := []auth.DirectoryOption{}
	if cfg.bcryptCost > 0 {
		dirOpts = append(dirOpts, auth.WithBcryptCost(cfg.bcryptCost))
	}
	s.Users = auth.NewDirectory(
		state.New(ns, auth.UsersKey, auth.SeedUsers(cfg.bcryptCost), log, state.WithReread()),
		dirOpts...,
	)
	s.Catalog = catalog.New(
		state.New(ns, catalog.CoursesKey, catalog.SeedCourses, log),
		state.New(ns, catalog.JobsKey, catalog.SeedJobs, log),
	)
	s.Orders = purchase.New(
		state.New(ns, purchase.Key, purchase.Seed, log, state.WithReread()),
		purchase.WithEvents(bus),
		purchase.WithLogger(cfg.logger),
	)
	s.Inbox = notification.NewInbox(
		state.New[notification.Notifications](ns, notification.Key, nil, log, state.WithReread()),
		notification.WithEvents(bus),
		notification.WithLogger(cfg.logger),
	)
	s.Teachers = teacher.NewRoster(state.New(ns, teacher.Key, teacher.Seed, log, state.WithReread()))
	s.Content = settings.New(
		state.New(ns, settings.SettingsKey, settings.SeedSettings, log, state.WithReread()),
		state.New(ns, settings.PagesKey, settings.SeedPages, log, state.WithReread()),
	)

	contactOpts := []contact.Option{
		contact.WithAdmins(s.adminIDs),
		contact.WithLogger(cfg.logger),
	}
	if cfg.mailer != nil {
		contactOpts = append(contactOpts, contact.WithMailer(cfg.mailer, func(ctx context.Context) string {
			return s.Content.Settings(ctx).NotifyEmail
		}))
	}
	s.Contact = contact.NewDesk(
		state.New[[]contact.Message](ns, contact.Key, nil, log, state.WithReread()),
		s.Inbox,
		contactOpts...,
	)

	s.Checkout = checkout.New(s.Orders, s.Inbox, bundle,
		checkout.WithAdmins(s.adminRecipients),
		checkout.WithLogger(cfg.logger),
	)
	return s
}

// Bus returns the event bus.
func (s *Site) Bus() *events.Bus { return s.bus }

// Bundle returns the message catalogs.
func (s *Site) Bundle() *i18n.Bundle { return s.bundle }

// Storage returns the raw backend.
func (s *Site) Storage() kv.Storage { return s.storage }

// Load hydrates the shared stores. It is safe to call repeatedly.
func (s *Site) Load(ctx context.Context) {
	s.Users.Store().Load(ctx)
	s.Orders.Store().Load(ctx)
	s.Inbox.Store().Load(ctx)
}

// Visitor builds the root of visitor id. language is the fallback
// negotiated from the request, used until the visitor picks one.
func (s *Site) Visitor(id, language string) *Root {
	return newRoot(s, id, language)
}

func (s *Site) adminIDs(ctx context.Context) []int {
	admins := s.Users.WithRole(ctx, auth.RoleAdmin)
	ids := make([]int, 0, len(admins))
	for _, u := range admins {
		ids = append(ids, u.ID)
	}
	return ids
}

func (s *Site) adminRecipients(ctx context.Context) []checkout.AdminRecipient {
	ids := s.adminIDs(ctx)
	out := make([]checkout.AdminRecipient, 0, len(ids))
	for _, id := range ids {
		out = append(out, checkout.AdminRecipient{ID: id, Language: s.bundle.DefaultLanguage()})
	}
	return out
}
