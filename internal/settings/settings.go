// Package settings stores the site settings and the editable content pages.
//
// Pages are written in Markdown per language and rendered to sanitized HTML
// when saved, so reads never run the renderer.
package settings

import (
	"context"
	"errors"
	"maps"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/dmitrymomot/academy/internal/state"
	"github.com/dmitrymomot/academy/pkg/i18n"
	"github.com/dmitrymomot/academy/pkg/markdown"
	"github.com/dmitrymomot/academy/pkg/sanitizer"
)

const (
	SettingsKey = "settings"
	PagesKey    = "content"
)

var (
	ErrInvalidSiteName = errors.New("settings: site name is required")
	ErrInvalidEmail    = errors.New("settings: invalid email")
	ErrUnknownPage     = errors.New("settings: unknown page")
	ErrEmptyPage       = errors.New("settings: page body is required")
	ErrUnknownSocial   = errors.New("settings: unknown social network")
)

// Pages that can be edited.
var Pages = []string{"about", "privacy", "terms", "faq"}

// Socials that can be linked from the site.
var Socials = []string{"telegram", "instagram", "facebook", "youtube", "linkedin"}

// Settings are the site-wide contact details and links.
type Settings struct {
	SiteName     string            `json:"siteName"`
	Email        string            `json:"email"`
	Phone        string            `json:"phone"`
	Address      i18n.Text         `json:"address"`
	WorkingHours string            `json:"workingHours"`
	Socials      map[string]string `json:"socials"`
	// NotifyEmail receives contact form submissions. It is not public.
	NotifyEmail string    `json:"notifyEmail,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Public strips the fields visitors must not see.
func (s Settings) Public() Settings {
	s.NotifyEmail = ""
	return s
}

func (s *Settings) normalize() error {
	s.SiteName = sanitizer.Text(s.SiteName)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	s.Phone = sanitizer.Text(s.Phone)
	s.WorkingHours = sanitizer.Text(s.WorkingHours)
	s.NotifyEmail = strings.ToLower(strings.TrimSpace(s.NotifyEmail))
	for lang, v := range s.Address {
		s.Address[lang] = sanitizer.Text(v)
	}

	var errs []error
	if s.SiteName == "" {
		errs = append(errs, ErrInvalidSiteName)
	}
	if !validEmail(s.Email) || (s.NotifyEmail != "" && !validEmail(s.NotifyEmail)) {
		errs = append(errs, ErrInvalidEmail)
	}
	for name, link := range s.Socials {
		if !slices.Contains(Socials, name) {
			errs = append(errs, ErrUnknownSocial)
			break
		}
		s.Socials[name] = strings.TrimSpace(link)
	}
	return errors.Join(errs...)
}

// Page is a content page.
type Page struct {
	Slug      string    `json:"slug"`
	Title     i18n.Text `json:"title"`
	Markdown  i18n.Text `json:"markdown"`
	HTML      i18n.Text `json:"html"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Rendered is a page in one language.
type Rendered struct {
	Slug      string    `json:"slug"`
	Lang      string    `json:"lang"`
	Title     string    `json:"title"`
	HTML      string    `json:"html"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageInput is the editable part of a Page.
type PageInput struct {
	Title    i18n.Text `json:"title"`
	Markdown i18n.Text `json:"markdown"`
}

// Site manages settings and pages.
type Site struct {
	settings *state.Store[Settings]
	pages    *state.Store[map[string]Page]
	now      func() time.Time
}

// New wraps the settings and pages stores.
func New(settings *state.Store[Settings], pages *state.Store[map[string]Page]) *Site {
	return &Site{settings: settings, pages: pages, now: time.Now}
}

// Settings returns the full settings.
func (s *Site) Settings(ctx context.Context) Settings {
	return s.settings.Get(ctx)
}

// UpdateSettings validates and replaces the settings.
func (s *Site) UpdateSettings(ctx context.Context, in Settings) (Settings, error) {
	if in.Socials == nil {
		in.Socials = map[string]string{}
	}
	if err := in.normalize(); err != nil {
		return Settings{}, err
	}
	in.UpdatedAt = s.now().UTC()
	if err := s.settings.Set(ctx, in); err != nil {
		return Settings{}, err
	}
	return in, nil
}

// Page returns the page slug as stored, with Markdown sources.
func (s *Site) Page(ctx context.Context, slug string) (Page, error) {
	if !slices.Contains(Pages, slug) {
		return Page{}, ErrUnknownPage
	}
	p, ok := s.pages.Get(ctx)[slug]
	if !ok {
		return Page{Slug: slug, Title: i18n.Text{}, Markdown: i18n.Text{}, HTML: i18n.Text{}}, nil
	}
	return p, nil
}

// Render returns the page slug in lang, falling back like i18n.Text.In.
func (s *Site) Render(ctx context.Context, slug, lang string) (Rendered, error) {
	p, err := s.Page(ctx, slug)
	if err != nil {
		return Rendered{}, err
	}
	out := Rendered{
		Slug:      slug,
		Lang:      lang,
		Title:     p.Title.In(lang),
		HTML:      p.HTML.In(lang),
		UpdatedAt: p.UpdatedAt,
	}
	if p.HTML[lang] == "" {
		for _, l := range slices.Sorted(maps.Keys(p.HTML)) {
			if p.HTML[l] == out.HTML {
				out.Lang = l
				break
			}
		}
	}
	return out, nil
}

// UpdatePage renders in.Markdown for every language and stores the page.
func (s *Site) UpdatePage(ctx context.Context, slug string, in PageInput) (Page, error) {
	if !slices.Contains(Pages, slug) {
		return Page{}, ErrUnknownPage
	}

	page := Page{
		Slug:      slug,
		Title:     i18n.Text{},
		Markdown:  i18n.Text{},
		HTML:      i18n.Text{},
		UpdatedAt: s.now().UTC(),
	}
	for lang, title := range in.Title {
		page.Title[lang] = sanitizer.Text(title)
	}
	for lang, src := range in.Markdown {
		if strings.TrimSpace(src) == "" {
			continue
		}
		html, err := markdown.Render(src)
		if err != nil {
			return Page{}, err
		}
		page.Markdown[lang] = src
		page.HTML[lang] = html
	}
	if len(page.HTML) == 0 {
		return Page{}, ErrEmptyPage
	}

	_, err := s.pages.Update(ctx, func(pages *map[string]Page) error {
		if *pages == nil {
			*pages = make(map[string]Page)
		}
		(*pages)[slug] = page
		return nil
	})
	if err != nil {
		return Page{}, err
	}
	return page, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
