package handlers

import (
	"net/http"

	"github.com/dmitrymomot/academy/internal/preference"
	"github.com/dmitrymomot/academy/internal/web"
)

// Preferences serves theme, language and sidebar state.
type Preferences struct{}

// Routes implements web.Handler.
func (h Preferences) Routes(r web.Router) {
	r.Route("/api/preferences", func(r web.Router) {
		r.GET("/", h.all)
		r.GET("/theme", h.theme)
		r.PUT("/theme", h.setTheme)
		r.GET("/language", h.language)
		r.PUT("/language", h.setLanguage)
		r.POST("/sidebar/toggle", h.toggleSidebar)
	})
}

func scope(c web.Context) preference.Scope {
	return preference.Scope(c.QueryDefault("scope", string(preference.ScopeSite)))
}

func (h Preferences) all(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	return send(c, root.Preferences.Snapshot(c))
}

type themeBody struct {
	Theme preference.Theme `json:"theme"`
}

func (h Preferences) theme(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	t, err := root.Preferences.Theme(c, scope(c))
	if err != nil {
		return err
	}
	return send(c, themeBody{Theme: t})
}

func (h Preferences) setTheme(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body themeBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	if err := root.Preferences.SetTheme(c, scope(c), body.Theme); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, body, "preferences.theme")
}

type languageBody struct {
	Language string `json:"language"`
}

func (h Preferences) language(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	lang, err := root.Preferences.Language(c, scope(c))
	if err != nil {
		return err
	}
	return send(c, languageBody{Language: lang})
}

// setLanguage answers in the new language when the site scope changed.
func (h Preferences) setLanguage(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	var body languageBody
	if err := c.BindJSON(&body); err != nil {
		return err
	}
	if err := root.Preferences.SetLanguage(c, scope(c), body.Language); err != nil {
		return err
	}
	return respond(c, http.StatusOK, root, body, "preferences.language")
}

type sidebarBody struct {
	Collapsed bool `json:"collapsed"`
}

func (h Preferences) toggleSidebar(c web.Context) error {
	root, err := visitor(c)
	if err != nil {
		return err
	}
	collapsed, err := root.Preferences.ToggleSidebar(c, scope(c))
	if err != nil {
		return err
	}
	return send(c, sidebarBody{Collapsed: collapsed})
}
