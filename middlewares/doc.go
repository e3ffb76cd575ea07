// Package middlewares provides the HTTP middleware stack: request ids, panic
// recovery, request logging and CORS.
//
// RequestID, Recover and RequestLogger are web.Middleware and run inside the
// router. CORS is plain net/http middleware because it must answer preflight
// requests for routes that have no OPTIONS handler.
package middlewares
