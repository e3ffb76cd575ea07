package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/cookie"
)

const secret = "0123456789abcdef0123456789abcdef"

func roundTrip(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew_RequiresLongSecret(t *testing.T) {
	t.Parallel()

	_, err := cookie.New(cookie.WithSecret("short"))
	require.ErrorIs(t, err, cookie.ErrBadSecret)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(cookie.WithSecret(secret))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "visitor", "abc", 60)

		got, err := m.GetSigned(roundTrip(t, rec), "visitor")
		require.NoError(t, err)
		require.Equal(t, "abc", got)

		c := rec.Result().Cookies()[0]
		require.True(t, c.HttpOnly)
		require.Equal(t, "/", c.Path)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		_, err := m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "visitor")
		require.ErrorIs(t, err, cookie.ErrNotFound)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "visitor", "abc", 60)
		c := rec.Result().Cookies()[0]
		_, sig, _ := strings.Cut(c.Value, ".")

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "visitor", Value: "ZXZpbA." + sig})
		_, err := m.GetSigned(req, "visitor")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("signature bound to name", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.SetSigned(rec, "a", "abc", 60)
		c := rec.Result().Cookies()[0]

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "b", Value: c.Value})
		_, err := m.GetSigned(req, "b")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("delete expires", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		m.Delete(rec, "visitor")
		require.Negative(t, rec.Result().Cookies()[0].MaxAge)
	})
}
