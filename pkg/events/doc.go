// Package events is a small in-process publish/subscribe bus with typed topics.
//
// Handlers run synchronously in the publisher's goroutine, in subscription
// order. A panicking handler is recovered and logged so the remaining
// handlers still run.
//
//	unsubscribe := events.On(bus, events.CartUpdated, func(ctx context.Context, e events.Event, items []cart.Item) {
//	    // ...
//	})
//	defer unsubscribe()
//
// A [Forwarder] registered with [Bus.Forward] receives every published event
// after local delivery. [Bridge] is a Redis pub/sub forwarder that replays
// events from other instances through [Bus.Deliver], which skips forwarders
// so events never loop.
package events
