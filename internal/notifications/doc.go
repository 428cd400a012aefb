// Package notifications mirrors user-facing toasts to ntfy.
//
// NewService publishes to the ntfy topic URL configured in config.toml and
// degrades to a no-op when no topic is set. Forwarder subscribes to the event
// bus and hands toast events to the service from its own goroutine so bus
// delivery never waits on the network.
package notifications
