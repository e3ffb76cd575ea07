package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/provider"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/pkg/i18n"
)

var errNoVisitor = errors.New("handlers: visitor state missing from request context")

// response is the body of successful mutations.
type response struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func visitor(c web.Context) (*provider.Root, error) {
	root, ok := provider.FromContext(c)
	if !ok {
		return nil, errNoVisitor
	}
	return root, nil
}

// signedIn returns the visitor and its user, or auth.ErrNotAuthenticated.
func signedIn(c web.Context) (*provider.Root, auth.User, error) {
	root, err := visitor(c)
	if err != nil {
		return nil, auth.User{}, err
	}
	u, err := root.Session.Require(c)
	if err != nil {
		return nil, auth.User{}, err
	}
	return root, u, nil
}

func toast(c web.Context, root *provider.Root, key string, args ...i18n.M) string {
	return root.Site().Bundle().T(root.Language(c), locales.Toast, key, args...)
}

// respond writes data with a translated toast message.
func respond(c web.Context, status int, root *provider.Root, data any, key string, args ...i18n.M) error {
	return c.JSON(status, response{Data: data, Message: toast(c, root, key, args...)})
}

func intParam(c web.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, web.ErrBadRequest("invalid "+name, web.WithErrorCode("bad_request"), web.WithError(err))
	}
	return v, nil
}

// send writes data without a message.
func send(c web.Context, data any) error {
	return c.JSON(http.StatusOK, response{Data: data})
}
