package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/health"
)

type testHandler struct {
	trace *[]string
}

func tracing(trace *[]string, name string) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			*trace = append(*trace, name)
			return next(c)
		}
	}
}

func (h testHandler) Routes(r web.Router) {
	r.GET("/items/{id}", func(c web.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id"), "q": c.QueryDefault("q", "none")})
	}, tracing(h.trace, "route"))

	r.POST("/items", func(c web.Context) error {
		var body struct {
			Title string `json:"title"`
		}
		if err := c.BindJSON(&body); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, body)
	})

	r.GET("/fail", func(web.Context) error { return errors.New("db exploded") })
	r.GET("/conflict", func(web.Context) error {
		return web.ErrConflict("already exists", web.WithErrorCode("exists"))
	})

	r.Route("/admin", func(r web.Router) {
		r.Use(tracing(h.trace, "group"))
		r.GET("/", func(c web.Context) error { return c.NoContent(http.StatusNoContent) })
	})

	r.GET("/ctx", func(c web.Context) error {
		return c.JSON(http.StatusOK, c.Get(ctxKey{}))
	}, func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			c.Set(ctxKey{}, "value")
			return next(c)
		}
	})
}

type ctxKey struct{}

func newApp(trace *[]string, opts ...web.Option) *web.App {
	return web.New(append([]web.Option{
		web.WithMiddleware(tracing(trace, "global")),
		web.WithHandlers(testHandler{trace: trace}),
	}, opts...)...)
}

func TestApp_Routing(t *testing.T) {
	t.Parallel()

	t.Run("params query and middleware order", func(t *testing.T) {
		t.Parallel()

		var trace []string
		app := newApp(&trace)

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42?q=go", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"id":"42","q":"go"}`, rec.Body.String())
		require.Equal(t, []string{"global", "route"}, trace)
	})

	t.Run("group middleware", func(t *testing.T) {
		t.Parallel()

		var trace []string
		app := newApp(&trace)

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, []string{"global", "group"}, trace)
	})

	t.Run("context values flow to handler", func(t *testing.T) {
		t.Parallel()

		var trace []string
		rec := httptest.NewRecorder()
		newApp(&trace).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ctx", nil))
		require.JSONEq(t, `"value"`, rec.Body.String())
	})
}

func TestApp_Errors(t *testing.T) {
	t.Parallel()

	t.Run("unknown errors become 500", func(t *testing.T) {
		t.Parallel()

		var trace []string
		rec := httptest.NewRecorder()
		newApp(&trace).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.NotContains(t, rec.Body.String(), "db exploded")
	})

	t.Run("http errors keep status and code", func(t *testing.T) {
		t.Parallel()

		var trace []string
		rec := httptest.NewRecorder()
		newApp(&trace).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conflict", nil))

		require.Equal(t, http.StatusConflict, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "exists", body["code"])
		require.Equal(t, "already exists", body["message"])
	})

	t.Run("custom error handler", func(t *testing.T) {
		t.Parallel()

		var trace []string
		var got error
		app := newApp(&trace, web.WithErrorHandler(func(c web.Context, err error) {
			got = err
			_ = c.NoContent(http.StatusTeapot)
		}))

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
		require.EqualError(t, got, "db exploded")
	})

	t.Run("not found handler", func(t *testing.T) {
		t.Parallel()

		var trace []string
		app := newApp(&trace, web.WithNotFound(func(web.Context) error {
			return web.ErrNotFound("nothing here")
		}))

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Contains(t, rec.Body.String(), "nothing here")
	})
}

func TestContext_BindJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  int
	}{
		{"valid", `{"title":"Go"}`, "application/json", http.StatusCreated},
		{"malformed", `{"title":`, "application/json", http.StatusBadRequest},
		{"unknown field", `{"title":"Go","admin":true}`, "application/json", http.StatusBadRequest},
		{"wrong content type", `title=Go`, "application/x-www-form-urlencoded", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var trace []string
			req := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			newApp(&trace).ServeHTTP(rec, req)
			require.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestApp_Health(t *testing.T) {
	t.Parallel()

	app := web.New(web.WithHealthChecks(health.Checks{
		"storage": func(context.Context) error { return nil },
	}))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAsHTTPError(t *testing.T) {
	t.Parallel()

	inner := web.ErrForbidden("no")
	wrapped := errors.Join(errors.New("ctx"), inner)
	require.Equal(t, inner, web.AsHTTPError(wrapped))
	require.Nil(t, web.AsHTTPError(errors.New("plain")))
}

func TestRun_GracefulShutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	started, stopped := false, false

	done := make(chan error, 1)
	go func() {
		done <- web.Run(ctx, http.NotFoundHandler(),
			web.Listener(ln),
			web.StartupHook(func(context.Context) error { started = true; return nil }),
			web.ShutdownHook(func(context.Context) error { stopped = true; return nil }),
		)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String())
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusNotFound
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	require.True(t, started)
	require.True(t, stopped)
}

func TestRun_StartupFailure(t *testing.T) {
	t.Parallel()

	err := web.Run(context.Background(), http.NotFoundHandler(),
		web.Address("127.0.0.1:0"),
		web.StartupHook(func(context.Context) error { return errors.New("migrations failed") }),
	)
	require.ErrorContains(t, err, "migrations failed")
}
