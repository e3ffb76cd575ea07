package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/academy/pkg/kv"
)

// Validator is implemented by values that check their own invariants.
type Validator interface {
	Validate() error
}

type envelope struct {
	Version *int            `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Store holds one value of type T persisted under key.
type Store[T any] struct {
	storage kv.Storage
	key     string
	seed    func() T
	opts    *options

	mu     sync.Mutex
	value  T
	ready  atomic.Bool
	loader singleflight.Group
}

// New creates a Store. seed produces the value used when the key is absent
// or unreadable; it is called on every fallback and must return fresh data.
func New[T any](storage kv.Storage, key string, seed func() T, opts ...Option) *Store[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if seed == nil {
		seed = func() T {
			var zero T
			return zero
		}
	}
	return &Store[T]{
		storage: storage,
		key:     key,
		seed:    seed,
		opts:    o,
	}
}

// Key returns the storage key.
func (s *Store[T]) Key() string { return s.key }

// Ready reports whether the first Load has completed.
func (s *Store[T]) Ready() bool { return s.ready.Load() }

// Load hydrates the store from storage. Concurrent callers share one read.
// When the key is absent the seed is persisted; when it cannot be read or
// decoded the seed is used in memory only.
func (s *Store[T]) Load(ctx context.Context) {
	_, _, _ = s.loader.Do("load", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.load(ctx)
		return nil, nil
	})
}

// Reload discards the in-memory value and reads storage again.
func (s *Store[T]) Reload(ctx context.Context) {
	s.ready.Store(false)
	s.Load(ctx)
}

// load must be called with s.mu held.
func (s *Store[T]) load(ctx context.Context) {
	defer s.ready.Store(true)

	v, err := s.read(ctx)
	switch {
	case err == nil:
		s.value = v
	case errors.Is(err, kv.ErrNotFound):
		s.value = s.seed()
		s.write(ctx, s.value)
	default:
		s.logError(ctx, "state: load failed, using defaults", err)
		s.value = s.seed()
	}
}

// Get returns a copy of the current value.
func (s *Store[T]) Get(ctx context.Context) T {
	s.ensure(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return clone(s.value)
}

// Update applies fn to a copy of the value, validates and persists the result,
// then publishes the store's event. If fn or validation fails nothing changes.
func (s *Store[T]) Update(ctx context.Context, fn func(v *T) error) (T, error) {
	s.ensure(ctx)

	s.mu.Lock()
	s.refresh(ctx)
	next := clone(s.value)
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return clone(s.value), err
	}
	if err := validate(next); err != nil {
		s.mu.Unlock()
		return clone(s.value), err
	}
	s.value = next
	s.write(ctx, next)
	out := clone(next)
	s.mu.Unlock()

	s.publish(ctx, out)
	return out, nil
}

// Set replaces the value.
func (s *Store[T]) Set(ctx context.Context, v T) error {
	_, err := s.Update(ctx, func(cur *T) error {
		*cur = v
		return nil
	})
	return err
}

// Clear resets memory to the zero value and removes the key from storage.
// The next Load of a fresh store over the same storage seeds again.
func (s *Store[T]) Clear(ctx context.Context) {
	s.mu.Lock()
	var zero T
	s.value = zero
	s.ready.Store(true)
	if err := s.storage.Delete(ctx, s.key); err != nil {
		s.logError(ctx, "state: delete failed", err)
	}
	s.mu.Unlock()

	s.publish(ctx, zero)
}

func (s *Store[T]) ensure(ctx context.Context) {
	if !s.ready.Load() {
		s.Load(ctx)
	}
}

// refresh re-reads storage for reread stores. Must be called with s.mu held.
// A missing key keeps the in-memory value.
func (s *Store[T]) refresh(ctx context.Context) {
	if !s.opts.reread {
		return
	}
	v, err := s.read(ctx)
	switch {
	case err == nil:
		s.value = v
	case errors.Is(err, kv.ErrNotFound):
	default:
		s.logError(ctx, "state: reread failed, keeping memory", err)
	}
}

func (s *Store[T]) read(ctx context.Context) (T, error) {
	var zero T
	raw, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return zero, err
	}
	v, err := s.decode(raw)
	if err != nil {
		return zero, err
	}
	if err := validate(v); err != nil {
		return zero, errors.Join(ErrDecode, err)
	}
	return v, nil
}

func (s *Store[T]) decode(raw []byte) (T, error) {
	var v T

	version, data := 0, json.RawMessage(raw)
	var env envelope
	if json.Unmarshal(raw, &env) == nil && env.Version != nil && env.Data != nil {
		version, data = *env.Version, env.Data
	}

	if version > s.opts.version {
		return v, fmt.Errorf("%w: %d > %d", ErrUnknownVersion, version, s.opts.version)
	}
	if version < s.opts.version && s.opts.migrate != nil {
		migrated, err := s.opts.migrate(version, data)
		if err != nil {
			return v, errors.Join(ErrMigrate, err)
		}
		data = migrated
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrDecode, err)
	}
	return v, nil
}

func (s *Store[T]) write(ctx context.Context, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logError(ctx, "state: encode failed", err)
		return
	}
	version := s.opts.version
	raw, err := json.Marshal(envelope{Version: &version, Data: data})
	if err != nil {
		s.logError(ctx, "state: encode failed", err)
		return
	}
	if err := s.storage.Set(ctx, s.key, raw); err != nil {
		s.logError(ctx, "state: write failed, keeping memory", err)
	}
}

func (s *Store[T]) publish(ctx context.Context, v T) {
	if s.opts.bus == nil || s.opts.topic == "" {
		return
	}
	if err := s.opts.bus.Emit(ctx, s.opts.topic, s.opts.scope, v); err != nil {
		s.logError(ctx, "state: publish failed", err)
	}
}

func (s *Store[T]) logError(ctx context.Context, msg string, err error) {
	s.opts.logger.ErrorContext(ctx, msg,
		slog.String("key", s.key),
		slog.String("error", err.Error()),
	)
}

func validate[T any](v T) error {
	if val, ok := any(v).(Validator); ok {
		return val.Validate()
	}
	if val, ok := any(&v).(Validator); ok {
		return val.Validate()
	}
	return nil
}

// clone deep-copies v through JSON so callers cannot alias stored slices.
func clone[T any](v T) T {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
