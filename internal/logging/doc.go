// Package logging assembles the structured slog loggers used across relcut
// commands.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and defines the standardized field keys (component, run_id,
// stage, phase, version) so every pipeline stage logs with the same shape.
// The package also provides a no-op logger for tests and wiring code that
// cannot fail.
//
// Prefer these constructors over hand-rolled slog setup.
package logging
