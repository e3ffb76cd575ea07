// Package provider wires the stores of the application together.
//
// Site holds the services whose data is shared by every visitor: users,
// catalog, orders, notifications, teachers, settings and contact messages.
// Their keys live in the "site" namespace.
//
// Root holds one visitor's stores: preferences, signed-in user and cart,
// kept under "visitor:{id}". The visitor id comes from a signed cookie set by
// Middleware, which also hydrates the root before handlers run. Hydration
// follows a fixed order so later stores can rely on earlier ones:
//
//	language → theme → auth → cart → purchases → notifications
package provider
