package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/academy/pkg/health"
)

// App is the HTTP application. It is immutable after New.
type App struct {
	router          chi.Router
	logger          *slog.Logger
	errorHandler    ErrorHandler
	notFound        HandlerFunc
	httpMiddlewares []func(http.Handler) http.Handler
	middlewares     []Middleware
	handlers        []Handler
	checks          health.Checks
}

// Option configures the App.
type Option func(*App)

// WithLogger sets the logger handed to every Context.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler sets the handler for errors returned by handlers.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) { a.errorHandler = h }
}

// WithNotFound sets the handler for unmatched routes.
func WithNotFound(h HandlerFunc) Option {
	return func(a *App) { a.notFound = h }
}

// WithHTTPMiddleware adds plain net/http middleware ahead of everything else.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) { a.httpMiddlewares = append(a.httpMiddlewares, mw...) }
}

// WithMiddleware adds middleware applied to every registered route.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) { a.middlewares = append(a.middlewares, mw...) }
}

// WithHandlers registers route handlers.
func WithHandlers(h ...Handler) Option {
	return func(a *App) { a.handlers = append(a.handlers, h...) }
}

// WithHealthChecks serves /health/live and /health/ready with the given checks.
func WithHealthChecks(checks health.Checks) Option {
	return func(a *App) { a.checks = checks }
}

// New builds the App and registers all routes.
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, mw := range a.httpMiddlewares {
		a.router.Use(mw)
	}

	if a.checks != nil {
		a.router.Get("/health/live", health.Live())
		a.router.Get("/health/ready", health.Ready(a.checks, health.WithLogger(a.logger)))
	}

	if a.notFound != nil {
		a.router.NotFound(a.adapt(Chain(a.notFound, a.middlewares...)))
	}

	r := &routerAdapter{router: a.router, app: a, mw: a.middlewares}
	for _, h := range a.handlers {
		h.Routes(r)
	}
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) adapt(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.logger)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		a.logger.ErrorContext(c, "error after response was written", slog.String("error", err.Error()))
		return
	}
	if a.errorHandler != nil {
		a.errorHandler(c, err)
		return
	}
	DefaultErrorHandler(c, err)
}

// DefaultErrorHandler renders HTTPErrors as JSON and hides everything else behind a 500.
func DefaultErrorHandler(c Context, err error) {
	httpErr := AsHTTPError(err)
	if httpErr == nil {
		c.Logger().ErrorContext(c, "unhandled error", slog.String("error", err.Error()))
		httpErr = ErrInternal(http.StatusText(http.StatusInternalServerError), WithErrorCode("internal"))
	}
	_ = c.JSON(httpErr.Code, httpErr)
}
