package resend

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/mailer"
)

func TestBuildRequest(t *testing.T) {
	t.Parallel()

	t.Run("uses default sender", func(t *testing.T) {
		t.Parallel()

		req := buildRequest("Academy <noreply@academy.uz>", &mailer.Email{
			To:      []string{"a@b.c"},
			Subject: "Hi",
			HTML:    "<p>Hi</p>",
			Tags:    map[string]string{"kind": "contact"},
		})
		require.Equal(t, "Academy <noreply@academy.uz>", req.From)
		require.Equal(t, []string{"a@b.c"}, req.To)
		require.Equal(t, "<p>Hi</p>", req.Html)
		require.Len(t, req.Tags, 1)
		require.Equal(t, "contact", req.Tags[0].Value)
	})

	t.Run("email from overrides default", func(t *testing.T) {
		t.Parallel()

		req := buildRequest("x@y.z", &mailer.Email{From: "me@academy.uz"})
		require.Equal(t, "me@academy.uz", req.From)
	})
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()
	require.False(t, Config{}.Enabled())
	require.True(t, Config{APIKey: "re_123"}.Enabled())
}
