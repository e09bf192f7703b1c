// Package logging is the structured-logging interface of the suggestion
// server. The app logs startup and shutdown through it, the api middleware
// logs each request and unexpected handler errors, and the services log cache
// traffic and backend failures. SlogLogger is the only implementation:
// JSON to stdout in the server, discarded in tests via NewNopLogger.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "vote toggled", "suggestion_id", sid, "user_id", uid)
type Logger interface {
	// Debug logs diagnostic detail such as cache hits and misses.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
