// Package handlers exposes the academy over JSON.
//
// Every handler runs behind provider.Middleware and reads the visitor's
// Root from the request context. Mutations answer with the changed data
// and a short translated toast:
//
//	{"data": {...}, "message": "Cart updated"}
//
// Errors returned by handlers are mapped to HTTP status codes and error
// codes by ErrorHandler, which translates the message into the visitor's
// language.
package handlers
