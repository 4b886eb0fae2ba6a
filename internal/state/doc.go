// Package state derives the backend connection state from health check
// outcomes and publishes immutable snapshots for concurrent readers.
package state
