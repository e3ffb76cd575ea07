package provider

import (
	"context"

	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/cookie"
	"github.com/dmitrymomot/academy/pkg/id"
)

// VisitorCookie is the name of the signed visitor id cookie.
const VisitorCookie = "academy_visitor"

const visitorMaxAge = 365 * 24 * 60 * 60

type rootKey struct{}

type visitorKey struct{}

// Middleware resolves the visitor from its cookie, issuing a new id when the
// cookie is missing or tampered with, then hydrates, touches and attaches
// the Root.
func Middleware(site *Site, cookies *cookie.Manager) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			visitorID, err := cookies.GetSigned(c.Request(), VisitorCookie)
			if err != nil || visitorID == "" {
				visitorID = id.NewULID()
				cookies.SetSigned(c.Response(), VisitorCookie, visitorID, visitorMaxAge)
			}

			lang := site.bundle.Match(c.Header("Accept-Language"))
			root := site.Visitor(visitorID, lang)
			c.Set(visitorKey{}, visitorID)
			root.Hydrate(c)
			root.Touch(c)
			c.Set(rootKey{}, root)

			return next(c)
		}
	}
}

// FromContext returns the Root attached by Middleware.
func FromContext(ctx context.Context) (*Root, bool) {
	r, ok := ctx.Value(rootKey{}).(*Root)
	return r, ok
}

// VisitorID returns the visitor id attached by Middleware, for log decoration.
func VisitorID(ctx context.Context) string {
	v, _ := ctx.Value(visitorKey{}).(string)
	return v
}

// WithRoot attaches r to ctx. Tests use it to bypass the cookie.
func WithRoot(ctx context.Context, r *Root) context.Context {
	ctx = context.WithValue(ctx, visitorKey{}, r.VisitorID)
	return context.WithValue(ctx, rootKey{}, r)
}
