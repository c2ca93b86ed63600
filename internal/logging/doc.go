// Package logging assembles the structured slog loggers used across
// mailcrate.
//
// It centralizes level and output plumbing and exposes context-aware helpers
// so engine code automatically tags log lines with the workflow name, email
// uid, release folder, and run correlation ID. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
