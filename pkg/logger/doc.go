// Package logger builds JSON slog loggers that pull request-scoped attributes
// from context and optionally fan errors out to Sentry.
//
//	log := logger.New(logger.Config{Level: slog.LevelDebug},
//		logger.Extract("request_id", middlewares.GetRequestID),
//		logger.Extract("visitor_id", provider.VisitorID),
//	)
//
// With a non-empty SENTRY_DSN, [NewWithSentry] sends warnings and errors to
// Sentry as well as stdout. An empty DSN falls back to stdout only.
//
// [NewNope] discards everything and is meant for tests.
package logger
