// Package queue persists planned publications in a sorted JSON file and
// defines their lifecycle vocabulary.
//
// The Store owns the schedule file: loading tolerates a missing or corrupt
// file (the queue restarts empty rather than crashing the host process) and
// drops individual malformed entries, while saving always rewrites the full
// set sorted by schedule through a temp-file rename so concurrent readers
// never observe a partial file. An advisory flock around the file serializes
// concurrent process-due invocations from separate processes.
//
// Treat this package as the single source of truth for queue semantics; the
// status vocabulary is closed and new statuses must be added here.
package queue
