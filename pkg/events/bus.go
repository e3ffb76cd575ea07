package events

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"
)

// Handler receives published events.
type Handler func(ctx context.Context, e Event)

// Forwarder ships events outside the process.
type Forwarder interface {
	Forward(ctx context.Context, e Event) error
}

type subscription struct {
	id      uint64
	topic   Topic
	handler Handler
}

// Bus fans events out to subscribers. The zero value is not usable; use NewBus.
type Bus struct {
	mu         sync.RWMutex
	subs       []subscription
	forwarders []Forwarder
	nextID     uint64
	logger     *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler panics and forwarding errors.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers h for topic and returns a function removing it.
func (b *Bus) Subscribe(topic Topic, h Handler) (unsubscribe func()) {
	return b.subscribe(topic, h)
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	return b.subscribe("", h)
}

func (b *Bus) subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, topic: topic, handler: h})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

// Forward registers a forwarder called after local delivery.
// Registering the same forwarder again is a no-op.
func (b *Bus) Forward(f Forwarder) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f == nil || reflect.TypeOf(f).Comparable() && slices.Contains(b.forwarders, f) {
		return
	}
	b.forwarders = append(b.forwarders, f)
}

// Publish delivers e locally and then to every forwarder.
// Forwarding errors are logged, never returned.
func (b *Bus) Publish(ctx context.Context, e Event) {
	b.Deliver(ctx, e)

	b.mu.RLock()
	forwarders := slices.Clone(b.forwarders)
	b.mu.RUnlock()

	for _, f := range forwarders {
		if err := f.Forward(ctx, e); err != nil {
			b.logger.WarnContext(ctx, "event forwarding failed",
				slog.String("topic", string(e.Topic)),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Emit builds an event from payload and publishes it.
func (b *Bus) Emit(ctx context.Context, topic Topic, scope string, payload any) error {
	e, err := New(topic, scope, payload)
	if err != nil {
		return err
	}
	b.Publish(ctx, e)
	return nil
}

// Deliver runs local subscribers only.
func (b *Bus) Deliver(ctx context.Context, e Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.topic == "" || s.topic == e.Topic {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.call(ctx, s.handler, e)
	}
}

func (b *Bus) call(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "event handler panicked",
				slog.String("topic", string(e.Topic)),
				slog.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	h(ctx, e)
}

// On subscribes a handler that receives the decoded payload.
// Events whose payload does not decode into T are logged and skipped.
func On[T any](b *Bus, topic Topic, fn func(ctx context.Context, e Event, payload T)) (unsubscribe func()) {
	return b.Subscribe(topic, func(ctx context.Context, e Event) {
		v, err := Decode[T](e)
		if err != nil {
			b.logger.WarnContext(ctx, "event payload decode failed",
				slog.String("topic", string(topic)),
				slog.String("error", err.Error()),
			)
			return
		}
		fn(ctx, e, v)
	})
}
