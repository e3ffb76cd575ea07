package kv

import (
	"container/list"
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

// item holds a stored value with its expiration time and key.
type item struct {
	expiresAt time.Time // zero value = never expires
	writtenAt time.Time
	value     []byte
	key       string
}

func (it *item) isExpired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Memory is an in-process Storage.
//
// Entries optionally expire after a sliding TTL (every Set refreshes it) and
// the least recently used entry is evicted once the configured maximum is
// reached. Values are copied on the way in and out.
type Memory struct {
	items    map[string]*list.Element
	eviction *list.List
	opts     *memoryOptions
	done     chan struct{}
	mu       sync.Mutex
	closed   bool
}

// NewMemory creates an in-memory storage.
//
// Example:
//
//	s := kv.NewMemory(
//	    kv.WithTTL(30 * 24 * time.Hour),
//	    kv.WithMaxEntries(100_000),
//	)
//	defer s.Close()
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	m := &Memory{
		items:    make(map[string]*list.Element),
		eviction: list.New(),
		opts:     o,
		done:     make(chan struct{}),
	}

	if o.ttl > 0 && o.cleanupInterval > 0 {
		go m.janitor()
	}

	return m
}

// Get returns a copy of the value stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	elem, ok := m.items[key]
	if !ok {
		return nil, ErrNotFound
	}

	it := elem.Value.(*item)
	if it.isExpired(time.Now()) {
		m.remove(elem)
		return nil, ErrNotFound
	}

	m.eviction.MoveToFront(elem)

	return slices.Clone(it.value), nil
}

// Set stores a copy of value under key and refreshes its TTL.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	now := time.Now()
	var expiresAt time.Time
	if m.opts.ttl > 0 {
		expiresAt = now.Add(m.opts.ttl)
	}

	if elem, ok := m.items[key]; ok {
		it := elem.Value.(*item)
		it.value = slices.Clone(value)
		it.expiresAt = expiresAt
		it.writtenAt = now
		m.eviction.MoveToFront(elem)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.items) >= m.opts.maxEntries {
		if oldest := m.eviction.Back(); oldest != nil {
			m.remove(oldest)
		}
	}

	m.items[key] = m.eviction.PushFront(&item{
		key:       key,
		value:     slices.Clone(value),
		expiresAt: expiresAt,
		writtenAt: now,
	})

	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}

	if elem, ok := m.items[key]; ok {
		m.remove(elem)
	}
	return nil
}

// Keys returns the unexpired keys starting with prefix.
func (m *Memory) Keys(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	now := time.Now()
	keys := make([]string, 0)
	for k, elem := range m.items {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if elem.Value.(*item).isExpired(now) {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys, nil
}

// Purge deletes the namespaces under prefix whose newest key was written
// before before. See [Purger].
func (m *Memory) Purge(_ context.Context, prefix string, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}

	latest := make(map[string]time.Time)
	members := make(map[string][]*list.Element)
	for k, elem := range m.items {
		ns, ok := namespaceOf(k, prefix)
		if !ok {
			continue
		}
		if w := elem.Value.(*item).writtenAt; w.After(latest[ns]) {
			latest[ns] = w
		}
		members[ns] = append(members[ns], elem)
	}

	var removed int64
	for ns, written := range latest {
		if !written.Before(before) {
			continue
		}
		for _, elem := range members[ns] {
			m.remove(elem)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// Close stops the janitor and rejects further operations.
// Close is idempotent.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	close(m.done)

	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.opts.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.deleteExpired()
		}
	}
}

func (m *Memory) deleteExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for elem := m.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if elem.Value.(*item).isExpired(now) {
			m.remove(elem)
		}
		elem = prev
	}
}

// remove unlinks elem. Caller must hold the mutex.
func (m *Memory) remove(elem *list.Element) {
	m.eviction.Remove(elem)
	delete(m.items, elem.Value.(*item).key)
}

var (
	_ Storage = (*Memory)(nil)
	_ Purger  = (*Memory)(nil)
)
