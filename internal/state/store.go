package state

import (
	"sync/atomic"
	"time"

	"github.com/oxprint/oxdash/internal/api"
)

// Snapshot is an immutable view of the poller's state. Transitions return
// a new Snapshot and never modify the receiver.
type Snapshot struct {
	State               ConnectionState
	Pending             int    // requests dispatched but not yet resolved
	Issued              uint64 // highest sequence dispatched
	Applied             uint64 // highest sequence whose outcome was applied
	LastResult          api.HealthCheckResult
	HasResult           bool
	LastError           error
	LastUpdated         time.Time
	ConsecutiveFailures int
}

// InFlight reports whether any dispatched request is still unresolved.
func (s Snapshot) InFlight() bool {
	return s.Pending > 0
}

// Dispatched records a new request tagged seq and resets the state to Checking.
func (s Snapshot) Dispatched(seq uint64) Snapshot {
	next := s
	next.State = Checking
	next.Pending++
	if seq > next.Issued {
		next.Issued = seq
	}
	return next
}

// Resolved applies the outcome of request seq. Outcomes older than the
// highest applied sequence only release their pending slot. The second
// return value reports whether the outcome was applied.
func (s Snapshot) Resolved(seq uint64, result api.HealthCheckResult, err error, at time.Time) (Snapshot, bool) {
	next := s
	if next.Pending > 0 {
		next.Pending--
	}
	if seq <= s.Applied {
		return next, false
	}
	next.Applied = seq
	next.State = Classify(result, err)
	next.LastError = err
	next.LastUpdated = at
	if err == nil {
		next.LastResult = result
		next.HasResult = true
	}
	if next.State == Connected {
		next.ConsecutiveFailures = 0
	} else {
		next.ConsecutiveFailures++
	}
	return next, true
}

// Abandoned releases the pending slot of a request whose outcome will not be
// applied. State and results are left untouched.
func (s Snapshot) Abandoned() Snapshot {
	next := s
	if next.Pending > 0 {
		next.Pending--
	}
	return next
}

// Store publishes snapshots to any number of readers. A single writer
// replaces the whole snapshot on each transition.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// Snapshot returns the latest published snapshot. The zero Store reports
// the initial Checking state.
func (s *Store) Snapshot() Snapshot {
	if snap := s.current.Load(); snap != nil {
		return *snap
	}
	return Snapshot{State: Checking}
}

// Publish replaces the current snapshot.
func (s *Store) Publish(snap Snapshot) {
	s.current.Store(&snap)
}
