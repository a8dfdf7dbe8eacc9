// Package logging constructs slog loggers for the clipforge CLI and daemon.
//
// Two output formats are supported: a human-oriented console format
// (timestamp, level, component, key=value attributes) and plain JSON for
// machine consumption. Helper constructors wrap slog attribute builders so
// call sites stay terse, and NewNop provides a discard logger for tests.
package logging
