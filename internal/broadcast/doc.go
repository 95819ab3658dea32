// Package broadcast implements replaying change streams.
//
// A Channel keeps the most recently published value. Subscribing atomically
// snapshots that value and attaches to future publishes, so the first value a
// subscriber receives is the state that was current when it subscribed,
// followed by every later publish in order.
//
// Publish never blocks. Each subscriber owns a bounded queue; when a slow
// subscriber lets it fill up, the oldest queued value is dropped so the
// newest one is still delivered. Dropped values are counted per subscription.
package broadcast
