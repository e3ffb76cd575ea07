package kv_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/academy/pkg/kv"
)

func TestMemory_GetSet(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory()
		defer s.Close()

		_, err := s.Get(context.Background(), "missing")
		require.ErrorIs(t, err, kv.ErrNotFound)
	})

	t.Run("returns stored value", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory()
		defer s.Close()

		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "theme", []byte(`"dark"`)))

		val, err := s.Get(ctx, "theme")
		require.NoError(t, err)
		require.Equal(t, `"dark"`, string(val))
	})

	t.Run("copies values in and out", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory()
		defer s.Close()

		ctx := context.Background()
		in := []byte("abc")
		require.NoError(t, s.Set(ctx, "k", in))
		in[0] = 'x'

		out, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "abc", string(out))

		out[0] = 'y'
		again, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "abc", string(again))
	})

	t.Run("rejects empty key", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory()
		defer s.Close()

		require.ErrorIs(t, s.Set(context.Background(), "", []byte("x")), kv.ErrEmptyKey)
	})

	t.Run("overwrites existing value", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory()
		defer s.Close()

		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("1")))
		require.NoError(t, s.Set(ctx, "k", []byte("2")))

		val, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, "2", string(val))
		require.Equal(t, 1, s.Len())
	})
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	t.Run("expired entry is not returned", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory(kv.WithTTL(time.Millisecond), kv.WithCleanupInterval(0))
		defer s.Close()

		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("v")))

		time.Sleep(5 * time.Millisecond)

		_, err := s.Get(ctx, "k")
		require.ErrorIs(t, err, kv.ErrNotFound)

		keys, err := s.Keys(ctx, "")
		require.NoError(t, err)
		require.Empty(t, keys)
	})

	t.Run("janitor removes expired entries", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory(kv.WithTTL(5*time.Millisecond), kv.WithCleanupInterval(5*time.Millisecond))
		defer s.Close()

		require.NoError(t, s.Set(context.Background(), "k", []byte("v")))

		require.Eventually(t, func() bool {
			return s.Len() == 0
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("zero TTL never expires", func(t *testing.T) {
		t.Parallel()

		s := kv.NewMemory(kv.WithCleanupInterval(0))
		defer s.Close()

		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", []byte("v")))
		time.Sleep(5 * time.Millisecond)

		_, err := s.Get(ctx, "k")
		require.NoError(t, err)
	})
}

func TestMemory_MaxEntries(t *testing.T) {
	t.Parallel()

	s := kv.NewMemory(kv.WithMaxEntries(2))
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	require.NoError(t, s.Set(ctx, "b", []byte("2")))

	// Touch "a" so "b" becomes least recently used.
	_, err := s.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "c", []byte("3")))

	_, err = s.Get(ctx, "a")
	require.NoError(t, err)
	_, err = s.Get(ctx, "b")
	require.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemory_Keys(t *testing.T) {
	t.Parallel()

	s := kv.NewMemory()
	defer s.Close()

	ctx := context.Background()
	for _, k := range []string{"site:purchases", "visitor:1:cartItems", "visitor:1:theme", "visitor:2:theme"} {
		require.NoError(t, s.Set(ctx, k, []byte("x")))
	}

	keys, err := s.Keys(ctx, "visitor:1:")
	require.NoError(t, err)
	require.Equal(t, []string{"visitor:1:cartItems", "visitor:1:theme"}, keys)

	all, err := s.Keys(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestMemory_Close(t *testing.T) {
	t.Parallel()

	s := kv.NewMemory()
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "Close must be idempotent")

	ctx := context.Background()
	require.ErrorIs(t, s.Set(ctx, "k", []byte("v")), kv.ErrClosed)
	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, kv.ErrClosed)
	require.ErrorIs(t, s.Delete(ctx, "k"), kv.ErrClosed)
}

func TestMemory_Purge(t *testing.T) {
	t.Parallel()

	s := kv.NewMemory()
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "visitor:active:theme", []byte(`"dark"`)))
	require.NoError(t, s.Set(ctx, "visitor:gone:theme", []byte(`"light"`)))
	require.NoError(t, s.Set(ctx, "visitor:gone:cartItems", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "site:purchases", []byte(`[]`)))

	time.Sleep(5 * time.Millisecond)
	cutoff := time.Now()
	time.Sleep(5 * time.Millisecond)

	// A fresh write keeps the whole namespace, the old theme included.
	require.NoError(t, s.Set(ctx, "visitor:active:lastSeen", []byte(`"now"`)))

	n, err := s.Purge(ctx, "visitor:", cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	keys, err := s.Keys(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"site:purchases", "visitor:active:lastSeen", "visitor:active:theme"}, keys)

	require.NoError(t, s.Close())
	_, err = s.Purge(ctx, "visitor:", cutoff)
	require.ErrorIs(t, err, kv.ErrClosed)
}
