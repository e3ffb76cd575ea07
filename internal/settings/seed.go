package settings

import (
	"time"

	"github.com/dmitrymomot/academy/pkg/i18n"
	"github.com/dmitrymomot/academy/pkg/markdown"
)

// SeedSettings returns the default settings.
func SeedSettings() Settings {
	return Settings{
		SiteName: "Academy",
		Email:    "info@academy.uz",
		Phone:    "+998 71 200 00 00",
		Address: i18n.Text{
			"uz": "Toshkent sh., Amir Temur ko'chasi, 1",
			"ru": "г. Ташкент, ул. Амира Темура, 1",
			"en": "1 Amir Temur street, Tashkent",
		},
		WorkingHours: "Mon-Sat 09:00-19:00",
		Socials: map[string]string{
			"telegram":  "https://t.me/academy_uz",
			"instagram": "https://instagram.com/academy_uz",
		},
	}
}

// SeedPages returns the default about page. A source that fails to render
// is left out.
func SeedPages() map[string]Page {
	sources := i18n.Text{
		"uz": "## Biz haqimizda\n\nAcademy zamonaviy kasblarni **amaliy** o'rgatadi.",
		"ru": "## О нас\n\nAcademy обучает современным профессиям **на практике**.",
		"en": "## About us\n\nAcademy teaches modern professions **hands-on**.",
	}
	page := Page{
		Slug:      "about",
		Title:     i18n.Text{"uz": "Biz haqimizda", "ru": "О нас", "en": "About us"},
		Markdown:  i18n.Text{},
		HTML:      i18n.Text{},
		UpdatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	for lang, src := range sources {
		html, err := markdown.Render(src)
		if err != nil {
			continue
		}
		page.Markdown[lang] = src
		page.HTML[lang] = html
	}
	return map[string]Page{"about": page}
}
