package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewULID(t *testing.T) {
	t.Parallel()

	t.Run("length and alphabet", func(t *testing.T) {
		t.Parallel()

		u := NewULID()
		require.Len(t, u, 26)
		for _, c := range u {
			require.Contains(t, alphabet, string(c))
		}
	})

	t.Run("unique", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]struct{}, 1000)
		for range 1000 {
			u := NewULID()
			_, dup := seen[u]
			require.False(t, dup)
			seen[u] = struct{}{}
		}
	})

	t.Run("sortable by time", func(t *testing.T) {
		t.Parallel()

		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		a := ulidAt(base)
		b := ulidAt(base.Add(time.Millisecond))
		require.Less(t, a[:10], b[:10])
	})
}

func TestTime(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 123_000_000, time.UTC)
	got, err := Time(ulidAt(ts))
	require.NoError(t, err)
	require.True(t, ts.Equal(got), "want %v got %v", ts, got)

	_, err = Time("short")
	require.ErrorIs(t, err, ErrInvalidULID)

	_, err = Time("UUUUUUUUUUUUUUUUUUUUUUUUUU")
	require.ErrorIs(t, err, ErrInvalidULID)
}
