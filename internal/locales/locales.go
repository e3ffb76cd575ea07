// Package locales embeds the interface message catalogs.
//
// Files are laid out as {lang}/{namespace}.yaml:
//
//	toast          short confirmations returned with successful mutations
//	errors         messages for API error codes
//	notifications  titles and bodies of generated notifications
package locales

import (
	"embed"

	"github.com/dmitrymomot/academy/pkg/i18n"
)

//go:embed en ru uz
var FS embed.FS

// Namespaces.
const (
	Toast         = "toast"
	Errors        = "errors"
	Notifications = "notifications"
)

// DefaultLanguage is used when no preference or header matches.
const DefaultLanguage = "uz"

// Bundle loads the embedded catalogs.
func Bundle() (*i18n.Bundle, error) {
	return i18n.New(
		i18n.WithDefaultLanguage(DefaultLanguage),
		i18n.WithYAMLDir(FS),
	)
}
