package handlers

import (
	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/web"
)

// RequireUser rejects visitors that are not signed in.
func RequireUser() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			if _, _, err := signedIn(c); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// RequireRole rejects visitors whose role is not one of roles.
func RequireRole(roles ...auth.Role) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c web.Context) error {
			_, u, err := signedIn(c)
			if err != nil {
				return err
			}
			if !u.Role.In(roles...) {
				return auth.ErrForbidden
			}
			return next(c)
		}
	}
}
