package state

import (
	"encoding/json"
	"log/slog"

	"github.com/dmitrymomot/academy/pkg/events"
)

// MigrateFunc upgrades raw data stored at version from to the current version.
type MigrateFunc func(from int, data json.RawMessage) (json.RawMessage, error)

type options struct {
	logger  *slog.Logger
	bus     *events.Bus
	topic   events.Topic
	scope   string
	reread  bool
	version int
	migrate MigrateFunc
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger for masked storage errors.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEvents publishes topic on bus after every change.
// scope is attached to the event; leave it empty for site-wide stores.
func WithEvents(bus *events.Bus, topic events.Topic, scope string) Option {
	return func(o *options) {
		o.bus = bus
		o.topic = topic
		o.scope = scope
	}
}

// WithReread makes Get and Update read storage before returning or mutating,
// so changes written by other stores over the same key become visible.
func WithReread() Option {
	return func(o *options) { o.reread = true }
}

// WithVersion sets the schema version written into the envelope.
func WithVersion(v int) Option {
	return func(o *options) {
		if v > 0 {
			o.version = v
		}
	}
}

// WithMigration sets the function that upgrades older stored versions.
func WithMigration(fn MigrateFunc) Option {
	return func(o *options) { o.migrate = fn }
}

func defaultOptions() *options {
	return &options{
		logger:  slog.New(slog.DiscardHandler),
		version: 1,
	}
}
