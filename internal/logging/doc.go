// Package logging constructs the application's slog loggers.
//
// Two output formats are supported: a compact single-line console format for
// interactive use and standard slog JSON for machine consumption. Components
// tag their loggers via WithComponent so console output groups related
// records.
package logging
