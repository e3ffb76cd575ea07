package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/markdown"
)

func TestRender(t *testing.T) {
	t.Parallel()

	t.Run("headings and emphasis", func(t *testing.T) {
		t.Parallel()

		out, err := markdown.Render("## About us\n\nWe teach **Go**.")
		require.NoError(t, err)
		require.Contains(t, out, "<h2>About us</h2>")
		require.Contains(t, out, "<strong>Go</strong>")
	})

	t.Run("tables", func(t *testing.T) {
		t.Parallel()

		out, err := markdown.Render("| a | b |\n|---|---|\n| 1 | 2 |\n")
		require.NoError(t, err)
		require.Contains(t, out, "<table>")
		require.Contains(t, out, "<td>1</td>")
	})

	t.Run("raw html is dropped", func(t *testing.T) {
		t.Parallel()

		out, err := markdown.Render("hi <script>alert(1)</script>")
		require.NoError(t, err)
		require.NotContains(t, out, "<script>")
	})
}
