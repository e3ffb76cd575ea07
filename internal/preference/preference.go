package preference

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/kv"
)

var (
	ErrUnknownScope    = errors.New("preference: unknown scope")
	ErrInvalidTheme    = errors.New("preference: invalid theme")
	ErrInvalidLanguage = errors.New("preference: unsupported language")
)

// Scope selects which copy of a preference is read or written.
type Scope string

const (
	ScopeSite    Scope = "site"
	ScopeAdmin   Scope = "admin"
	ScopeProfile Scope = "profile"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	}
	return false
}

// Change is the payload of preference events.
type Change[T any] struct {
	Scope Scope `json:"scope"`
	Value T     `json:"value"`
}

var (
	themeKeys = map[Scope]string{
		ScopeSite:  "theme",
		ScopeAdmin: "admin-theme",
	}
	languageKeys = map[Scope]string{
		ScopeSite:    "language",
		ScopeAdmin:   "admin-language-preference",
		ScopeProfile: "profileLanguage",
	}
	sidebarKeys = map[Scope]string{
		ScopeSite:  "sidebarCollapsed",
		ScopeAdmin: "adminSidebarCollapsed",
	}
)

type options struct {
	bus       *events.Bus
	logger    *slog.Logger
	languages []string
	language  string
	theme     Theme
}

// Option configures Preferences.
type Option func(*options)

// WithEvents publishes changes on bus.
func WithEvents(bus *events.Bus) Option {
	return func(o *options) { o.bus = bus }
}

// WithLogger sets the logger shared by the underlying stores.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithLanguages sets the supported language codes. The first one is the
// default unless WithDefaultLanguage is given.
func WithLanguages(langs ...string) Option {
	return func(o *options) {
		if len(langs) > 0 {
			o.languages = langs
		}
	}
}

// WithDefaultLanguage sets the language used before the visitor chooses one,
// typically negotiated from Accept-Language.
func WithDefaultLanguage(lang string) Option {
	return func(o *options) { o.language = lang }
}

// WithDefaultTheme sets the theme used before the visitor chooses one.
func WithDefaultTheme(t Theme) Option {
	return func(o *options) {
		if t.Valid() {
			o.theme = t
		}
	}
}

// Preferences holds one visitor's preference stores.
type Preferences struct {
	visitor   string
	opts      *options
	themes    map[Scope]*state.Store[Theme]
	languages map[Scope]*state.Store[string]
	sidebars  map[Scope]*state.Store[bool]
}

// New creates the preference stores of visitor over storage, which should
// already be namespaced to that visitor.
func New(storage kv.Storage, visitor string, opts ...Option) *Preferences {
	o := &options{
		logger:    slog.New(slog.DiscardHandler),
		languages: []string{"uz", "ru", "en"},
		theme:     ThemeSystem,
	}
	for _, opt := range opts {
		opt(o)
	}
	if !slices.Contains(o.languages, o.language) {
		o.language = o.languages[0]
	}

	stateOpts := []state.Option{state.WithLogger(o.logger), state.WithMigration(legacyScalar)}

	p := &Preferences{
		visitor:   visitor,
		opts:      o,
		themes:    make(map[Scope]*state.Store[Theme], len(themeKeys)),
		languages: make(map[Scope]*state.Store[string], len(languageKeys)),
		sidebars:  make(map[Scope]*state.Store[bool], len(sidebarKeys)),
	}
	for scope, key := range themeKeys {
		p.themes[scope] = state.New(storage, key, func() Theme { return o.theme }, stateOpts...)
	}
	for scope, key := range languageKeys {
		p.languages[scope] = state.New(storage, key, func() string { return o.language }, stateOpts...)
	}
	for scope, key := range sidebarKeys {
		p.sidebars[scope] = state.New(storage, key, func() bool { return false }, stateOpts...)
	}
	return p
}

// Theme returns the theme of scope. An invalid stored value reads as the default.
func (p *Preferences) Theme(ctx context.Context, scope Scope) (Theme, error) {
	s, ok := p.themes[scope]
	if !ok {
		return "", ErrUnknownScope
	}
	t := s.Get(ctx)
	if !t.Valid() {
		return p.opts.theme, nil
	}
	return t, nil
}

// SetTheme stores the theme of scope and publishes events.ThemeChanged.
func (p *Preferences) SetTheme(ctx context.Context, scope Scope, t Theme) error {
	s, ok := p.themes[scope]
	if !ok {
		return ErrUnknownScope
	}
	if !t.Valid() {
		return ErrInvalidTheme
	}
	if err := s.Set(ctx, t); err != nil {
		return err
	}
	p.publish(ctx, events.ThemeChanged, Change[Theme]{Scope: scope, Value: t})
	return nil
}

// Language returns the language of scope. An unsupported stored value reads
// as the default.
func (p *Preferences) Language(ctx context.Context, scope Scope) (string, error) {
	s, ok := p.languages[scope]
	if !ok {
		return "", ErrUnknownScope
	}
	lang := s.Get(ctx)
	if !slices.Contains(p.opts.languages, lang) {
		return p.opts.language, nil
	}
	return lang, nil
}

// SetLanguage stores the language of scope and publishes events.LanguageChanged.
func (p *Preferences) SetLanguage(ctx context.Context, scope Scope, lang string) error {
	s, ok := p.languages[scope]
	if !ok {
		return ErrUnknownScope
	}
	if !slices.Contains(p.opts.languages, lang) {
		return ErrInvalidLanguage
	}
	if err := s.Set(ctx, lang); err != nil {
		return err
	}
	p.publish(ctx, events.LanguageChanged, Change[string]{Scope: scope, Value: lang})
	return nil
}

// SidebarCollapsed reports whether the sidebar of scope is collapsed.
func (p *Preferences) SidebarCollapsed(ctx context.Context, scope Scope) (bool, error) {
	s, ok := p.sidebars[scope]
	if !ok {
		return false, ErrUnknownScope
	}
	return s.Get(ctx), nil
}

// ToggleSidebar flips the sidebar state of scope, publishes
// events.SidebarToggled and returns the new state.
func (p *Preferences) ToggleSidebar(ctx context.Context, scope Scope) (bool, error) {
	s, ok := p.sidebars[scope]
	if !ok {
		return false, ErrUnknownScope
	}
	collapsed, err := s.Update(ctx, func(v *bool) error {
		*v = !*v
		return nil
	})
	if err != nil {
		return false, err
	}
	p.publish(ctx, events.SidebarToggled, Change[bool]{Scope: scope, Value: collapsed})
	return collapsed, nil
}

// LoadLanguages hydrates the language stores.
func (p *Preferences) LoadLanguages(ctx context.Context) {
	for _, s := range p.languages {
		s.Load(ctx)
	}
}

// LoadThemes hydrates the theme and sidebar stores.
func (p *Preferences) LoadThemes(ctx context.Context) {
	for _, s := range p.themes {
		s.Load(ctx)
	}
	for _, s := range p.sidebars {
		s.Load(ctx)
	}
}

// Ready reports whether every store has been loaded.
func (p *Preferences) Ready() bool {
	for _, s := range p.themes {
		if !s.Ready() {
			return false
		}
	}
	for _, s := range p.languages {
		if !s.Ready() {
			return false
		}
	}
	for _, s := range p.sidebars {
		if !s.Ready() {
			return false
		}
	}
	return true
}

// Snapshot is every preference at once.
type Snapshot struct {
	Themes    map[Scope]Theme  `json:"themes"`
	Languages map[Scope]string `json:"languages"`
	Sidebars  map[Scope]bool   `json:"sidebars"`
}

// Snapshot returns all preferences of the visitor.
func (p *Preferences) Snapshot(ctx context.Context) Snapshot {
	snap := Snapshot{
		Themes:    make(map[Scope]Theme, len(p.themes)),
		Languages: make(map[Scope]string, len(p.languages)),
		Sidebars:  make(map[Scope]bool, len(p.sidebars)),
	}
	for scope := range p.themes {
		snap.Themes[scope], _ = p.Theme(ctx, scope)
	}
	for scope := range p.languages {
		snap.Languages[scope], _ = p.Language(ctx, scope)
	}
	for scope := range p.sidebars {
		snap.Sidebars[scope], _ = p.SidebarCollapsed(ctx, scope)
	}
	return snap
}

func (p *Preferences) publish(ctx context.Context, topic events.Topic, payload any) {
	if p.opts.bus == nil {
		return
	}
	if err := p.opts.bus.Emit(ctx, topic, p.visitor, payload); err != nil {
		p.opts.logger.ErrorContext(ctx, "preference: publish failed",
			slog.String("topic", string(topic)),
			slog.String("error", err.Error()),
		)
	}
}

// legacyScalar upgrades values written as bare unquoted strings, such as
// dark or ru, into JSON strings. Valid JSON passes through unchanged.
func legacyScalar(_ int, data json.RawMessage) (json.RawMessage, error) {
	if json.Valid(data) {
		return data, nil
	}
	return json.Marshal(string(data))
}
