package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/academy/pkg/id"
)

const defaultChannel = "academy:events"

// Bridge relays events between instances over Redis pub/sub.
type Bridge struct {
	client  redis.UniversalClient
	bus     *Bus
	channel string
	origin  string
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithChannel overrides the pub/sub channel.
func WithChannel(ch string) BridgeOption {
	return func(b *Bridge) {
		if ch != "" {
			b.channel = ch
		}
	}
}

// WithBridgeLogger sets the logger.
func WithBridgeLogger(l *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBridge creates a bridge and registers it as a forwarder on bus.
// Callers must not register it again.
func NewBridge(client redis.UniversalClient, bus *Bus, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		client:  client,
		bus:     bus,
		channel: defaultChannel,
		origin:  id.NewULID(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(b)
	}
	bus.Forward(b)
	return b
}

// Forward publishes e to Redis stamped with this instance's origin.
// Events that arrived from another instance are not re-published.
func (b *Bridge) Forward(ctx context.Context, e Event) error {
	if e.Origin != "" {
		return nil
	}
	e.Origin = b.origin
	raw, err := json.Marshal(e)
	if err != nil {
		return errors.Join(ErrMarshalPayload, err)
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

// Start subscribes to the channel and delivers foreign events locally until Stop.
func (b *Bridge) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return ErrBridgeStarted
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.done = make(chan struct{})

	go func() {
		defer close(b.done)
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				b.handle(ctx, msg.Payload)
			}
		}
	}()

	b.logger.InfoContext(ctx, "event bridge started", slog.String("channel", b.channel))
	return nil
}

func (b *Bridge) handle(ctx context.Context, payload string) {
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		b.logger.WarnContext(ctx, "event bridge: malformed message", slog.String("error", err.Error()))
		return
	}
	if e.Origin == b.origin {
		return
	}
	b.bus.Deliver(ctx, e)
}

// Stop unsubscribes and waits for the receive loop to exit.
func (b *Bridge) Stop(ctx context.Context) error {
	b.mu.Lock()
	cancel, done := b.cancel, b.done
	b.cancel, b.done = nil, nil
	b.mu.Unlock()

	if cancel == nil {
		return ErrBridgeStopped
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
