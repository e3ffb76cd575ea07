package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/cart"
	"github.com/dmitrymomot/academy/internal/catalog"
	"github.com/dmitrymomot/academy/internal/checkout"
	"github.com/dmitrymomot/academy/internal/contact"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/notification"
	"github.com/dmitrymomot/academy/internal/preference"
	"github.com/dmitrymomot/academy/internal/provider"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/settings"
	"github.com/dmitrymomot/academy/internal/teacher"
	"github.com/dmitrymomot/academy/internal/web"
	"github.com/dmitrymomot/academy/middlewares"
	"github.com/dmitrymomot/academy/pkg/i18n"
	"github.com/dmitrymomot/academy/pkg/job"
)

// mapping binds a domain error to its HTTP representation. field names
// the request field the error belongs to, if any.
type mapping struct {
	err    error
	status int
	code   string
	field  string
}

var mappings = []mapping{
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", ""},
	{auth.ErrNotAuthenticated, http.StatusUnauthorized, "login_required", ""},
	{auth.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{auth.ErrUserNotFound, http.StatusNotFound, "user_not_found", ""},
	{auth.ErrUsernameTaken, http.StatusConflict, "username_taken", "username"},
	{auth.ErrEmailTaken, http.StatusConflict, "email_taken", "email"},
	{auth.ErrPasswordMismatch, http.StatusUnprocessableEntity, "passwords_do_not_match", "confirmPassword"},
	{auth.ErrPasswordTooShort, http.StatusUnprocessableEntity, "password_too_short", "password"},
	{auth.ErrWrongPassword, http.StatusUnprocessableEntity, "wrong_password", "currentPassword"},
	{auth.ErrInvalidUsername, http.StatusUnprocessableEntity, "invalid_username", "username"},
	{auth.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_email", "email"},
	{auth.ErrInvalidName, http.StatusUnprocessableEntity, "invalid_name", "name"},
	{auth.ErrInvalidRole, http.StatusUnprocessableEntity, "validation_failed", "role"},

	{catalog.ErrCourseNotFound, http.StatusNotFound, "course_not_found", ""},
	{catalog.ErrJobNotFound, http.StatusNotFound, "not_found", ""},

	{cart.ErrItemNotFound, http.StatusNotFound, "cart_item_not_found", ""},
	{cart.ErrInvalidQuantity, http.StatusUnprocessableEntity, "invalid_quantity", "quantity"},
	{cart.ErrInvalidItem, http.StatusUnprocessableEntity, "validation_failed", "id"},
	{cart.ErrInvalidPrice, http.StatusUnprocessableEntity, "validation_failed", "price"},

	{checkout.ErrLoginRequired, http.StatusUnauthorized, "login_required", ""},
	{checkout.ErrEmptyCart, http.StatusUnprocessableEntity, "empty_cart", ""},
	{checkout.ErrAlreadyPurchased, http.StatusConflict, "already_purchased", ""},

	{purchase.ErrNotFound, http.StatusNotFound, "order_not_found", ""},
	{purchase.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_status", "status"},
	{purchase.ErrInvalidMethod, http.StatusUnprocessableEntity, "invalid_payment_method", "paymentMethod"},
	{purchase.ErrStatusFinalized, http.StatusConflict, "order_finalized", ""},

	{notification.ErrNotFound, http.StatusNotFound, "notification_not_found", ""},
	{notification.ErrEmptyTitle, http.StatusUnprocessableEntity, "invalid_notification", "title"},
	{notification.ErrEmptyMessage, http.StatusUnprocessableEntity, "invalid_notification", "message"},
	{notification.ErrInvalidType, http.StatusUnprocessableEntity, "invalid_notification", "type"},

	{preference.ErrUnknownScope, http.StatusBadRequest, "unknown_scope", "scope"},
	{preference.ErrInvalidTheme, http.StatusUnprocessableEntity, "invalid_theme", "theme"},
	{preference.ErrInvalidLanguage, http.StatusUnprocessableEntity, "invalid_language", "language"},

	{teacher.ErrNotFound, http.StatusNotFound, "teacher_not_found", ""},
	{teacher.ErrEmailTaken, http.StatusConflict, "email_taken", "email"},
	{teacher.ErrInvalidName, http.StatusUnprocessableEntity, "invalid_name", "name"},
	{teacher.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_email", "email"},
	{teacher.ErrInvalidSubject, http.StatusUnprocessableEntity, "invalid_teacher", "subject"},
	{teacher.ErrInvalidStatus, http.StatusUnprocessableEntity, "invalid_teacher", "status"},
	{teacher.ErrInvalidYears, http.StatusUnprocessableEntity, "invalid_teacher", "experience"},

	{settings.ErrUnknownPage, http.StatusNotFound, "page_not_found", ""},
	{settings.ErrEmptyPage, http.StatusUnprocessableEntity, "empty_page", "markdown"},
	{settings.ErrInvalidSiteName, http.StatusUnprocessableEntity, "invalid_settings", "siteName"},
	{settings.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_email", "email"},
	{settings.ErrUnknownSocial, http.StatusUnprocessableEntity, "invalid_settings", "socials"},

	{job.ErrUnknownTask, http.StatusNotFound, "job_not_found", ""},

	{contact.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{contact.ErrInvalidName, http.StatusUnprocessableEntity, "invalid_name", "name"},
	{contact.ErrInvalidEmail, http.StatusUnprocessableEntity, "invalid_email", "email"},
	{contact.ErrMessageTooShort, http.StatusUnprocessableEntity, "message_too_short", "message"},
	{contact.ErrMessageTooLong, http.StatusUnprocessableEntity, "message_too_long", "message"},
}

// httpError converts err into an untranslated HTTPError. Joined
// validation errors contribute one field each; when more than one field
// failed the code becomes validation_failed.
func httpError(err error) *web.HTTPError {
	if httpErr := web.AsHTTPError(err); httpErr != nil {
		return httpErr
	}

	var (
		out    *web.HTTPError
		fields = map[string]string{}
	)
	for _, m := range mappings {
		if !errors.Is(err, m.err) {
			continue
		}
		if out == nil {
			out = web.NewHTTPError(m.status, m.err.Error(), web.WithErrorCode(m.code), web.WithError(err))
		}
		if m.field != "" {
			if _, seen := fields[m.field]; !seen {
				fields[m.field] = m.code
			}
		}
	}
	if out == nil {
		return web.ErrInternal(http.StatusText(http.StatusInternalServerError),
			web.WithErrorCode("internal_error"), web.WithError(err))
	}
	if len(fields) > 0 {
		out.Fields = fields
	}
	if len(fields) > 1 {
		out.ErrorCode = "validation_failed"
		out.Code = http.StatusUnprocessableEntity
	}
	return out
}

// ErrorHandler renders errors as translated JSON. Field entries hold
// error codes until translated here.
func ErrorHandler(bundle *i18n.Bundle) web.ErrorHandler {
	return func(c web.Context, err error) {
		httpErr := httpError(err)
		if httpErr.Code >= http.StatusInternalServerError {
			c.Logger().ErrorContext(c, "request failed", slog.String("error", err.Error()))
		}

		lang := requestLanguage(c, bundle)
		out := *httpErr
		if out.ErrorCode != "" && bundle.Has(bundle.DefaultLanguage(), locales.Errors, out.ErrorCode) {
			out.Message = bundle.T(lang, locales.Errors, out.ErrorCode)
		}
		if len(httpErr.Fields) > 0 {
			out.Fields = make(map[string]string, len(httpErr.Fields))
			for field, code := range httpErr.Fields {
				out.Fields[field] = bundle.T(lang, locales.Errors, code)
			}
		}
		out.RequestID = middlewares.GetRequestID(c)

		_ = c.JSON(out.Code, out)
	}
}

// NotFound answers unmatched routes.
func NotFound(c web.Context) error {
	return web.ErrNotFound("route not found", web.WithErrorCode("route_not_found"))
}

func requestLanguage(c web.Context, bundle *i18n.Bundle) string {
	if root, ok := provider.FromContext(c); ok {
		return root.Language(c)
	}
	return bundle.Match(c.Header("Accept-Language"))
}
