// Package events dispatches domain events to registered handlers. Services
// drain the events recorded by domain entities after a successful commit and
// publish them here, so downstream components (background tasks, analytics)
// stay decoupled from the services that produce the events.
package events
