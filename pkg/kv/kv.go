package kv

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Storage is a byte-oriented key-value store.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns all keys starting with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources held by the backend.
	Close() error
}

// Separator joins a namespace and a key.
const Separator = ":"

// Purger is implemented by backends that can drop idle namespaces in bulk.
//
// Purge removes every namespace directly under prefix whose most recent write
// happened before before. A namespace is prefix followed by one segment up to
// the next Separator, so with prefix "visitor:" the keys "visitor:abc:theme"
// and "visitor:abc:cartItems" form the namespace "visitor:abc" and are removed
// together or not at all. Purge returns the number of removed keys.
type Purger interface {
	Purge(ctx context.Context, prefix string, before time.Time) (int64, error)
}

// namespaceOf returns the namespace of key directly under prefix.
func namespaceOf(key, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(key, prefix)
	if !ok || rest == "" {
		return "", false
	}
	seg, _, _ := strings.Cut(rest, Separator)
	return prefix + seg, true
}

// namespaced scopes every key of the wrapped Storage under a prefix.
type namespaced struct {
	next   Storage
	prefix string
}

// Namespace returns a Storage whose keys live under ns.
// Keys returned by Keys have the namespace stripped.
// Closing a namespaced storage is a no-op; close the parent instead.
func Namespace(s Storage, ns string) Storage {
	if ns == "" {
		return s
	}
	if n, ok := s.(*namespaced); ok {
		return &namespaced{next: n.next, prefix: n.prefix + ns + Separator}
	}
	return &namespaced{next: s, prefix: ns + Separator}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.next.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	return n.next.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.next.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Keys(ctx context.Context, prefix string) ([]string, error) {
	keys, err := n.next.Keys(ctx, n.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, n.prefix)
	}
	return keys, nil
}

func (n *namespaced) Close() error {
	return nil
}

// GetJSON reads key and decodes it into dst.
func GetJSON(ctx context.Context, s Storage, key string, dst any) error {
	data, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.Join(ErrUnmarshal, err)
	}
	return nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, s Storage, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	return s.Set(ctx, key, data)
}

// Healthcheck returns a readiness check that writes, reads and deletes a sentinel key.
func Healthcheck(s Storage) func(context.Context) error {
	const key = "__healthcheck"
	return func(ctx context.Context) error {
		if err := s.Set(ctx, key, []byte("ok")); err != nil {
			return err
		}
		if _, err := s.Get(ctx, key); err != nil {
			return err
		}
		return s.Delete(ctx, key)
	}
}
