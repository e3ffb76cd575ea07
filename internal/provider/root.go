package provider

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/cart"
	"github.com/dmitrymomot/academy/internal/preference"
	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/kv"
)

// LastSeenKey holds the time of the visitor's latest request.
const LastSeenKey = "lastSeen"

// Root is one visitor's state.
type Root struct {
	VisitorID   string
	Preferences *preference.Preferences
	Session     *auth.Session
	Cart        *cart.Cart

	site    *Site
	storage kv.Storage
}

func newRoot(s *Site, id, language string) *Root {
	ns := kv.Namespace(s.storage, VisitorPrefix+id)
	log := state.WithLogger(s.logger)

	return &Root{
		VisitorID: id,
		Preferences: preference.New(ns, id,
			preference.WithEvents(s.bus),
			preference.WithLogger(s.logger),
			preference.WithLanguages(s.bundle.Languages()...),
			preference.WithDefaultLanguage(language),
		),
		Session: auth.NewSession(
			state.New[*auth.User](ns, auth.CurrentUserKey, nil, log, state.WithEvents(s.bus, events.AuthChanged, id)),
			s.Users,
		),
		Cart:    cart.New(state.New[cart.Items](ns, cart.Key, nil, log, state.WithEvents(s.bus, events.CartUpdated, id))),
		site:    s,
		storage: ns,
	}
}

// Site returns the shared services.
func (r *Root) Site() *Site { return r.site }

// Hydrate loads every store in dependency order. The signed-in user is
// refreshed from the directory so role changes apply on the next request.
func (r *Root) Hydrate(ctx context.Context) {
	r.Preferences.LoadLanguages(ctx)
	r.Preferences.LoadThemes(ctx)
	r.Session.Store().Load(ctx)
	r.Session.Refresh(ctx)
	r.Cart.Store().Load(ctx)
	r.site.Orders.Store().Load(ctx)
	r.site.Inbox.Store().Load(ctx)
}

// Touch records the visit. Reads alone never rewrite stored keys, so the
// heartbeat is what keeps a returning visitor's namespace from being purged.
// It is rewritten at most once per touch interval.
func (r *Root) Touch(ctx context.Context) {
	now := r.site.cfg.now()

	var seen time.Time
	err := kv.GetJSON(ctx, r.storage, LastSeenKey, &seen)
	if err == nil && now.Sub(seen) < r.site.cfg.touchInterval {
		return
	}
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		r.site.logger.WarnContext(ctx, "read visitor heartbeat", slog.String("error", err.Error()))
	}
	if err := kv.SetJSON(ctx, r.storage, LastSeenKey, now); err != nil {
		r.site.logger.WarnContext(ctx, "write visitor heartbeat", slog.String("error", err.Error()))
	}
}

// Ready reports whether every store of the root has been hydrated.
func (r *Root) Ready() bool {
	return r.Preferences.Ready() &&
		r.Session.Store().Ready() &&
		r.Cart.Store().Ready() &&
		r.site.Orders.Store().Ready() &&
		r.site.Inbox.Store().Ready()
}

// Language returns the visitor's site language.
func (r *Root) Language(ctx context.Context) string {
	lang, err := r.Preferences.Language(ctx, preference.ScopeSite)
	if err != nil {
		return r.site.bundle.DefaultLanguage()
	}
	return lang
}

// User returns the signed-in user.
func (r *Root) User(ctx context.Context) (auth.User, bool) {
	return r.Session.Current(ctx)
}

// Scopes returns the event scopes this visitor may observe.
func (r *Root) Scopes(ctx context.Context) []string {
	scopes := []string{r.VisitorID}
	if u, ok := r.User(ctx); ok {
		scopes = append(scopes, events.UserScope(u.ID))
	}
	return scopes
}

// Sees reports whether e should be delivered to this visitor. Admins see
// every user-scoped change so order and notification lists stay live.
func (r *Root) Sees(ctx context.Context, e events.Event) bool {
	for _, s := range r.Scopes(ctx) {
		if e.VisibleTo(s) {
			return true
		}
	}
	if u, ok := r.User(ctx); ok && u.Role == auth.RoleAdmin {
		return events.IsUserScope(e.Scope)
	}
	return false
}
