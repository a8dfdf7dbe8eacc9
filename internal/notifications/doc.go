// Package notifications delivers run milestones via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. The run and daemon commands emit batch summaries and error
// events so an operator hears about failed uploads without tailing logs.
//
// Extend this package if you need alternative transports; callers depend
// only on the Service interface.
package notifications
