// Package kv provides an origin-scoped key-value storage abstraction with
// in-memory, Redis and Postgres implementations.
//
// Values are opaque byte slices, usually JSON documents written by
// internal/state. Every backend implements the same [Storage] interface so the
// application can run on the in-memory backend in development and tests and on
// Redis or Postgres in production.
//
// # Namespaces
//
// [Namespace] scopes a Storage under a prefix. The application keeps site-wide
// data under "site" and per-visitor data under "visitor:{id}", the same way a
// browser scopes localStorage to an origin and profile:
//
//	site := kv.Namespace(store, "site")
//	visitor := kv.Namespace(store, "visitor:"+visitorID)
//
//	_ = visitor.Set(ctx, "cartItems", data)
//	keys, _ := visitor.Keys(ctx, "") // ["cartItems"]
//
// # Backends
//
//	mem := kv.NewMemory(kv.WithTTL(30 * 24 * time.Hour))
//	rds := kv.NewRedis(client, kv.WithRedisPrefix("academy"))
//	pg := kv.NewPostgres(pool)
//
// The Postgres backend needs its table; apply [Migrations] with pkg/db.Migrate.
//
// # Purging idle namespaces
//
// Every backend implements [Purger]. Purge drops a namespace only when none
// of its keys was written since the cutoff, so a visitor who keeps writing
// any key keeps all of them:
//
//	n, err := store.(kv.Purger).Purge(ctx, "visitor:", time.Now().Add(-ttl))
//
// # Typed helpers
//
// [GetJSON] and [SetJSON] encode values as JSON:
//
//	var items []Item
//	err := kv.GetJSON(ctx, store, "cartItems", &items)
//	if errors.Is(err, kv.ErrNotFound) {
//	    // first visit
//	}
//
// # Errors
//
//   - [ErrNotFound]: key does not exist or has expired
//   - [ErrClosed]: operation on a closed backend
//   - [ErrMarshal], [ErrUnmarshal]: JSON helper failures
package kv
