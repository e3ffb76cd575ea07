package handlers_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/provider"
)

// readEvent returns the next event name, skipping comments and data lines.
func readEvent(t *testing.T, lines <-chan string) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, open := <-lines:
			require.True(t, open, "stream closed")
			if name, ok := strings.CutPrefix(line, "event: "); ok {
				return name
			}
		case <-timeout:
			t.Fatal("no event within timeout")
		}
	}
}

func TestEvents_Stream(t *testing.T) {
	t.Parallel()
	app := newApp(t)
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	// Issue the visitor cookie through a normal request first.
	cl := app.client(t, "en")
	cl.do(http.MethodGet, "/api/cart", nil)
	require.NotNil(t, cl.cookie)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	req.AddCookie(cl.cookie)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	require.Equal(t, "ready", readEvent(t, lines))

	// Another visitor's cart change must not reach this stream.
	stranger := app.client(t, "en")
	stranger.do(http.MethodPost, "/api/cart/items", map[string]int{"courseId": 3})

	cl.do(http.MethodPost, "/api/cart/items", map[string]int{"courseId": 1})
	require.Equal(t, "cartUpdated", readEvent(t, lines))

	cl.do(http.MethodPut, "/api/preferences/theme", map[string]string{"theme": "dark"})
	require.Equal(t, "themeChanged", readEvent(t, lines))

	// Signing in widens the stream to the user's orders and notifications.
	cl.login("user", "user123")
	require.Equal(t, "authChanged", readEvent(t, lines))

	_, err = app.site.Inbox.Add(ctx, notification.New{
		UserID:  notification.For(1),
		Title:   "Reminder",
		Message: "Your lesson starts soon",
	})
	require.NoError(t, err)
	require.Equal(t, "notificationsUpdated", readEvent(t, lines))
}

// A cookieless request still gets a stream under a fresh visitor id. The
// stream ends when the client goes away.
func TestEvents_NewVisitor(t *testing.T) {
	t.Parallel()
	app := newApp(t)

	ctx, cancel := context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequestWithContext(ctx, http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "event: ready")
	require.NotEmpty(t, rec.Result().Cookies())
	require.Equal(t, provider.VisitorCookie, rec.Result().Cookies()[0].Name)
}
