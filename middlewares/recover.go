package middlewares

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/dmitrymomot/academy/internal/web"
)

const stackSize = 4096

// PanicError is returned to the error handler when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// IsPanicError reports whether err wraps a PanicError.
func IsPanicError(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}

// Recover converts panics into PanicError and logs the stack.
func Recover() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					stack := make([]byte, stackSize)
					stack = stack[:runtime.Stack(stack, false)]

					c.Logger().ErrorContext(c, "panic recovered",
						slog.Any("panic", r),
						slog.String("stack", string(stack)),
					)
					err = &PanicError{Value: r, Stack: stack}
				}
			}()
			return next(c)
		}
	}
}
