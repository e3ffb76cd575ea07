package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/sanitizer"
)

func TestStripTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"tags removed", "<b>bold</b> text", "bold text"},
		{"script removed", "<script>alert(1)</script>hi", "hi"},
		{"entities decoded", "Tom &amp; Jerry", "Tom & Jerry"},
		{"trimmed", "  hi  ", "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, sanitizer.StripTags(tt.input))
		})
	}
}

func TestText(t *testing.T) {
	t.Parallel()
	require.Equal(t, "John Smith", sanitizer.Text("  John \n\t <i>Smith</i> "))
}

func TestContent(t *testing.T) {
	t.Parallel()

	t.Run("keeps formatting", func(t *testing.T) {
		t.Parallel()

		in := "<h2>About</h2><p><strong>Hi</strong></p><ul><li>a</li></ul>"
		require.Equal(t, in, sanitizer.Content(in))
	})

	t.Run("drops scripts and handlers", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Content(`<p onclick="x()">a</p><script>alert(1)</script><a href="javascript:alert(1)">b</a>`)
		require.NotContains(t, out, "onclick")
		require.NotContains(t, out, "script")
		require.NotContains(t, out, "javascript:")
	})

	t.Run("links get nofollow", func(t *testing.T) {
		t.Parallel()

		out := sanitizer.Content(`<a href="https://example.com">x</a>`)
		require.Contains(t, out, `rel="nofollow noopener"`)
		require.Contains(t, out, `target="_blank"`)
	})
}
