package preference_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/preference"
	"github.com/dmitrymomot/academy/pkg/events"
	"github.com/dmitrymomot/academy/pkg/kv"
)

func TestPreferences_Defaults(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p := preference.New(kv.NewMemory(), "v1", preference.WithDefaultLanguage("ru"))
	require.False(t, p.Ready())

	theme, err := p.Theme(ctx, preference.ScopeSite)
	require.NoError(t, err)
	require.Equal(t, preference.ThemeSystem, theme)

	lang, err := p.Language(ctx, preference.ScopeProfile)
	require.NoError(t, err)
	require.Equal(t, "ru", lang)

	fallback := preference.New(kv.NewMemory(), "v1", preference.WithDefaultLanguage("de"))
	lang, err = fallback.Language(ctx, preference.ScopeSite)
	require.NoError(t, err)
	require.Equal(t, "uz", lang)

	p.LoadLanguages(ctx)
	p.LoadThemes(ctx)
	require.True(t, p.Ready())
}

func TestPreferences_SurviveReload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := kv.NewMemory()

	p := preference.New(mem, "v1")
	require.NoError(t, p.SetTheme(ctx, preference.ScopeSite, preference.ThemeDark))
	require.NoError(t, p.SetTheme(ctx, preference.ScopeAdmin, preference.ThemeLight))
	require.NoError(t, p.SetLanguage(ctx, preference.ScopeSite, "en"))
	require.NoError(t, p.SetLanguage(ctx, preference.ScopeAdmin, "ru"))
	collapsed, err := p.ToggleSidebar(ctx, preference.ScopeAdmin)
	require.NoError(t, err)
	require.True(t, collapsed)

	reloaded := preference.New(mem, "v1")
	snap := reloaded.Snapshot(ctx)
	require.Equal(t, preference.ThemeDark, snap.Themes[preference.ScopeSite])
	require.Equal(t, preference.ThemeLight, snap.Themes[preference.ScopeAdmin])
	require.Equal(t, "en", snap.Languages[preference.ScopeSite])
	require.Equal(t, "ru", snap.Languages[preference.ScopeAdmin])
	require.Equal(t, "uz", snap.Languages[preference.ScopeProfile])
	require.True(t, snap.Sidebars[preference.ScopeAdmin])
	require.False(t, snap.Sidebars[preference.ScopeSite])

	keys, err := mem.Keys(ctx, "")
	require.NoError(t, err)
	require.Contains(t, keys, "admin-theme")
	require.Contains(t, keys, "admin-language-preference")
}

func TestPreferences_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	p := preference.New(kv.NewMemory(), "v1")

	require.ErrorIs(t, p.SetTheme(ctx, preference.ScopeSite, "neon"), preference.ErrInvalidTheme)
	require.ErrorIs(t, p.SetTheme(ctx, preference.ScopeProfile, preference.ThemeDark), preference.ErrUnknownScope)
	require.ErrorIs(t, p.SetLanguage(ctx, preference.ScopeSite, "de"), preference.ErrInvalidLanguage)
	require.ErrorIs(t, p.SetLanguage(ctx, "kiosk", "en"), preference.ErrUnknownScope)
	_, err := p.ToggleSidebar(ctx, preference.ScopeProfile)
	require.ErrorIs(t, err, preference.ErrUnknownScope)
}

func TestPreferences_LegacyValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := kv.NewMemory()

	require.NoError(t, mem.Set(ctx, "theme", []byte("dark")))
	require.NoError(t, mem.Set(ctx, "language", []byte(`"ru"`)))
	require.NoError(t, mem.Set(ctx, "admin-theme", []byte("purple")))

	p := preference.New(mem, "v1")
	theme, err := p.Theme(ctx, preference.ScopeSite)
	require.NoError(t, err)
	require.Equal(t, preference.ThemeDark, theme)

	lang, err := p.Language(ctx, preference.ScopeSite)
	require.NoError(t, err)
	require.Equal(t, "ru", lang)

	admin, err := p.Theme(ctx, preference.ScopeAdmin)
	require.NoError(t, err)
	require.Equal(t, preference.ThemeSystem, admin)
}

func TestPreferences_Events(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := events.NewBus()

	var themes []preference.Change[preference.Theme]
	events.On(bus, events.ThemeChanged, func(_ context.Context, e events.Event, c preference.Change[preference.Theme]) {
		require.Equal(t, "v1", e.Scope)
		themes = append(themes, c)
	})
	var sidebars []preference.Change[bool]
	events.On(bus, events.SidebarToggled, func(_ context.Context, _ events.Event, c preference.Change[bool]) {
		sidebars = append(sidebars, c)
	})

	p := preference.New(kv.NewMemory(), "v1", preference.WithEvents(bus))
	require.NoError(t, p.SetTheme(ctx, preference.ScopeAdmin, preference.ThemeDark))
	_, err := p.ToggleSidebar(ctx, preference.ScopeSite)
	require.NoError(t, err)
	_, err = p.ToggleSidebar(ctx, preference.ScopeSite)
	require.NoError(t, err)

	require.Equal(t, []preference.Change[preference.Theme]{{Scope: preference.ScopeAdmin, Value: preference.ThemeDark}}, themes)
	require.Len(t, sidebars, 2)
	require.True(t, sidebars[0].Value)
	require.False(t, sidebars[1].Value)
}
