// Package notifications publishes operator events to an ntfy topic.
//
// Only long-running maintenance work reports here: cache warm-up completion
// and failures, plus a test message for checking the topic. When no topic is
// configured NewService returns a notifier that does nothing.
package notifications
