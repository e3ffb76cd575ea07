package i18n

import (
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// M holds placeholder values.
type M map[string]any

// Bundle is an immutable set of catalogs and is safe for concurrent use.
type Bundle struct {
	messages    map[string]string
	defaultLang string
	languages   []string
	matcher     language.Matcher
}

// Option configures a Bundle during construction.
type Option func(*Bundle) error

// New builds a Bundle from options.
func New(opts ...Option) (*Bundle, error) {
	b := &Bundle{messages: make(map[string]string), defaultLang: "en"}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("i18n: apply option: %w", err)
		}
	}

	langs := make(map[string]struct{})
	for k := range b.messages {
		lang, _, _ := strings.Cut(k, ":")
		langs[lang] = struct{}{}
	}
	if len(langs) == 0 {
		return nil, ErrNoLanguages
	}
	delete(langs, b.defaultLang)

	// Default first so the matcher falls back to it.
	b.languages = append([]string{b.defaultLang}, slices.Sorted(maps.Keys(langs))...)
	tags := make([]language.Tag, 0, len(b.languages))
	for _, l := range b.languages {
		tags = append(tags, language.Make(l))
	}
	b.matcher = language.NewMatcher(tags)

	return b, nil
}

// WithDefaultLanguage sets the fallback language.
func WithDefaultLanguage(lang string) Option {
	return func(b *Bundle) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		b.defaultLang = lang
		return nil
	}
}

// WithMessages registers messages for one language and namespace.
func WithMessages(lang, namespace string, messages map[string]any) Option {
	return func(b *Bundle) error {
		if lang == "" {
			return ErrEmptyLanguage
		}
		if namespace == "" {
			return ErrEmptyNamespace
		}
		b.add(lang, namespace, messages)
		return nil
	}
}

// WithYAMLDir loads every {lang}/{namespace}.yaml (or .yml) file in fsys.
func WithYAMLDir(fsys fs.FS) Option {
	return func(b *Bundle) error {
		return fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			ext := strings.ToLower(path.Ext(p))
			if ext != ".yaml" && ext != ".yml" {
				return nil
			}

			dir := path.Dir(p)
			if dir == "." {
				return fmt.Errorf("%w: %q must be inside a language directory", ErrInvalidFile, p)
			}

			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("i18n: read %q: %w", p, err)
			}
			var messages map[string]any
			if err := yaml.Unmarshal(data, &messages); err != nil {
				return fmt.Errorf("%w: parse %q: %s", ErrInvalidFile, p, err)
			}

			b.add(path.Base(dir), strings.TrimSuffix(path.Base(p), path.Ext(p)), messages)
			return nil
		})
	}
}

func (b *Bundle) add(lang, namespace string, messages map[string]any) {
	for k, v := range flatten(messages, "") {
		b.messages[lang+":"+namespace+":"+k] = v
	}
}

// T returns the message for key, falling back to the base and default languages.
func (b *Bundle) T(lang, namespace, key string, placeholders ...M) string {
	for _, l := range b.chain(lang) {
		if msg, ok := b.messages[l+":"+namespace+":"+key]; ok {
			return replace(msg, placeholders...)
		}
	}
	return key
}

// Has reports whether key exists in lang without falling back.
func (b *Bundle) Has(lang, namespace, key string) bool {
	_, ok := b.messages[lang+":"+namespace+":"+key]
	return ok
}

// Languages returns the loaded languages, default first.
func (b *Bundle) Languages() []string {
	return slices.Clone(b.languages)
}

// DefaultLanguage returns the fallback language.
func (b *Bundle) DefaultLanguage() string { return b.defaultLang }

// Supports reports whether lang has a catalog.
func (b *Bundle) Supports(lang string) bool {
	return slices.Contains(b.languages, lang)
}

// Match returns the supported language that best fits an Accept-Language header.
func (b *Bundle) Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.defaultLang
	}
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return b.defaultLang
	}
	return b.languages[idx]
}

func (b *Bundle) chain(lang string) []string {
	out := []string{lang}
	if base, _, ok := strings.Cut(lang, "-"); ok {
		out = append(out, base)
	}
	if lang != b.defaultLang {
		out = append(out, b.defaultLang)
	}
	return out
}

func flatten(in map[string]any, prefix string) map[string]string {
	out := make(map[string]string)
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			for fk, fv := range flatten(val, key) {
				out[fk] = fv
			}
		case string:
			out[key] = val
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return out
}

func replace(msg string, placeholders ...M) string {
	for _, p := range placeholders {
		for k, v := range p {
			msg = strings.ReplaceAll(msg, "{{"+k+"}}", fmt.Sprint(v))
		}
	}
	return msg
}
