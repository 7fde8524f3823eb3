// Package live re-runs catalog queries when the tables they read change.
//
// A Registry tracks active subscriptions. Watch binds a query to the tables
// it reads and returns a Subscription whose channel yields a Snapshot
// immediately and again after every Notify naming one of those tables.
//
// # Delivery
//
// Each subscription owns one goroutine and a dirty flag. Notify only sets the
// flag, so writers never wait on subscribers. When the consumer falls behind,
// pending notifications collapse into a single re-run and the consumer
// receives the latest state rather than a backlog.
//
// # Cancellation
//
// Cancelling the context passed to Watch, or calling Close, stops redelivery
// and closes the channel.
package live
