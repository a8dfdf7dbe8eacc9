// Package manager coordinates one processing run over the durable schedule
// queue: pick due items earliest-first, render each into an uploadable
// artifact, optionally push it to the platform, and persist the queue after
// every item. Failures are isolated per item; a failed item stays failed
// until an operator re-enqueues it.
package manager
