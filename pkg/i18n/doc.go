// Package i18n loads message catalogs from YAML files and resolves
// localized, placeholder-filled strings.
//
// Catalogs live in an fs.FS as {lang}/{namespace}.yaml. Nested maps are
// flattened into dotted keys:
//
//	# en/toast.yaml
//	cart:
//	  added: "{{title}} added to cart"
//
//	b, err := i18n.New(i18n.WithDefaultLanguage("uz"), i18n.WithYAMLDir(locales.FS))
//	b.T("en", "toast", "cart.added", i18n.M{"title": "Go"})
//
// Lookups fall back from a regional tag to its base language and then to the
// default language. A missing key is returned as is.
//
// [Bundle.Match] picks the best supported language for an Accept-Language
// header using golang.org/x/text/language.
package i18n
