package middlewares

import (
	"context"

	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/id"
)

type requestIDKey struct{}

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses an incoming X-Request-ID or generates a ULID, stores it
// in the context and echoes it in the response.
func RequestID() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			reqID := c.Header(RequestIDHeader)
			if reqID == "" || len(reqID) > 128 {
				reqID = id.NewULID()
			}
			c.Set(requestIDKey{}, reqID)
			c.SetHeader(RequestIDHeader, reqID)
			return next(c)
		}
	}
}

// GetRequestID returns the request id stored by RequestID, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}
