package locales_test

import (
	"io/fs"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

func TestBundle(t *testing.T) {
	t.Parallel()

	b, err := locales.Bundle()
	require.NoError(t, err)
	require.Equal(t, []string{"uz", "en", "ru"}, b.Languages())
	require.Equal(t, "Passwords do not match", b.T("en", locales.Errors, "passwords_do_not_match"))
	require.Equal(t, "Frontend добавлен в корзину", b.T("ru", locales.Toast, "cart.added", i18n.M{"title": "Frontend"}))
	require.Equal(t, "Yangi buyurtma", b.T("uz", locales.Notifications, "admin_order.title"))
}

// Every language must define the same keys as English.
func TestCatalogsComplete(t *testing.T) {
	t.Parallel()

	keys := func(t *testing.T, file string) []string {
		t.Helper()
		raw, err := fs.ReadFile(locales.FS, file)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, yaml.Unmarshal(raw, &m))
		return flatten(m, "")
	}

	for _, ns := range []string{locales.Toast, locales.Errors, locales.Notifications} {
		want := keys(t, path.Join("en", ns+".yaml"))
		for _, lang := range []string{"ru", "uz"} {
			t.Run(lang+"/"+ns, func(t *testing.T) {
				t.Parallel()
				require.ElementsMatch(t, want, keys(t, path.Join(lang, ns+".yaml")))
			})
		}
	}
}

func flatten(m map[string]any, prefix string) []string {
	var out []string
	for k, v := range m {
		key := strings.TrimPrefix(prefix+"."+k, ".")
		if nested, ok := v.(map[string]any); ok {
			out = append(out, flatten(nested, key)...)
			continue
		}
		out = append(out, key)
	}
	return out
}
