package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/academy/internal/web"
)

// RequestLogger logs one line per request after the handler returns.
// Server errors are logged at error level, client errors at warn.
func RequestLogger() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			start := time.Now()
			err := next(c)

			status := 0
			var size int64
			if rw, ok := c.Response().(*web.ResponseWriter); ok {
				status, size = rw.Status(), rw.Size()
			}
			if err != nil {
				status = 500
				if httpErr := web.AsHTTPError(err); httpErr != nil {
					status = httpErr.Code
				}
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", size),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			c.Logger().LogAttrs(c, level, "request", attrs...)
			return err
		}
	}
}
