// Package services defines shared error classification used by the queue
// manager and external integrations.
//
// Structured error markers plus the Wrap helper translate failures from
// rendering, narration, and upload transport into consistent per-item
// outcomes: configuration errors abort a batch before any item is touched,
// validation errors fail a single item, and retriable transport errors feed
// the upload backoff loop.
//
// Use these helpers when wiring new collaborators so error handling stays
// uniform across the pipeline.
package services
