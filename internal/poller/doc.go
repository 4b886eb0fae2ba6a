// Package poller turns periodic /api/health checks into a connection state.
//
// # Lifecycle
//
//	p := poller.New(client, store)
//	p.Start(ctx, 30*time.Second) // first check dispatched before Start returns
//	...
//	p.RefreshNow()               // false when a check is already in flight
//	p.Stop()                     // idempotent; late responses are ignored
//
// # State Derivation
//
// Each dispatch resets the state to Checking. Each applied outcome is
// classified by state.Classify:
//
//   - transport failure, timeout, non-2xx  → Disconnected
//   - body status "healthy"                → Connected
//   - any other body status, bad body      → Error
//
// # Ordering
//
// Requests carry a sequence number. An outcome whose sequence is not higher
// than the last applied one is dropped, so overlapping scheduled and manual
// checks cannot let a slow stale response win. No request is retried.
//
// # Concurrency
//
// Checks run on their own goroutines. Bookkeeping is serialized by a mutex
// and every transition is published as a whole state.Snapshot, which
// readers load without locking.
package poller
