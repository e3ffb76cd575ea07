package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/internal/auth"
	"github.com/dmitrymomot/academy/internal/locales"
	"github.com/dmitrymomot/academy/internal/purchase"
	"github.com/dmitrymomot/academy/internal/teacher"
	"github.com/dmitrymomot/academy/internal/web"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		fields []string
	}{
		{"sentinel", purchase.ErrNotFound, http.StatusNotFound, "order_not_found", nil},
		{"wrapped", fmt.Errorf("load order: %w", purchase.ErrStatusFinalized), http.StatusConflict, "order_finalized", nil},
		{"single field", auth.ErrPasswordMismatch, http.StatusUnprocessableEntity, "passwords_do_not_match", []string{"confirmPassword"}},
		{"joined fields", errors.Join(teacher.ErrInvalidName, teacher.ErrInvalidSubject), http.StatusUnprocessableEntity, "validation_failed", []string{"name", "subject"}},
		{"http error passes through", web.ErrBadRequest("nope", web.WithErrorCode("invalid_json")), http.StatusBadRequest, "invalid_json", nil},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := httpError(tt.err)
			assert.Equal(t, tt.status, got.Code)
			assert.Equal(t, tt.code, got.ErrorCode)
			require.Len(t, got.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, got.Fields, f)
			}
		})
	}
}

// Every code the mapping can produce must have a message.
func TestMappingsTranslated(t *testing.T) {
	t.Parallel()

	bundle, err := locales.Bundle()
	require.NoError(t, err)
	for _, m := range mappings {
		for _, lang := range bundle.Languages() {
			assert.True(t, bundle.Has(lang, locales.Errors, m.code), "%s/%s", lang, m.code)
		}
	}
}
