package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/oxprint/oxdash/internal/api"
	"github.com/oxprint/oxdash/internal/state"
)

// DefaultInterval is the health poll cadence when none is configured.
const DefaultInterval = 30 * time.Second

// Poller keeps a continuously refreshed connection state for the backend.
//
// Every dispatched health check is tagged with an increasing sequence
// number. Outcomes are applied only when their sequence is higher than the
// last applied one, so a slow stale response never overwrites a newer one.
// Scheduled ticks always dispatch; RefreshNow coalesces with any request
// already in flight.
type Poller struct {
	checker api.HealthChecker
	store   *state.Store
	now     func() time.Time

	mu      sync.Mutex
	snap    state.Snapshot
	seq     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	stopped bool

	inflight sync.WaitGroup
}

// New builds a Poller that publishes to store. A nil store gets a private one.
func New(checker api.HealthChecker, store *state.Store) *Poller {
	if store == nil {
		store = &state.Store{}
	}
	p := &Poller{
		checker: checker,
		store:   store,
		now:     time.Now,
		snap:    state.Snapshot{State: state.Checking},
	}
	store.Publish(p.snap)
	return p
}

// Store returns the store the poller publishes to.
func (p *Poller) Store() *state.Store {
	return p.store
}

// Start dispatches the first health check immediately and then one every
// interval until Stop is called or ctx is cancelled. Later calls are no-ops.
func (p *Poller) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}

	p.mu.Lock()
	if p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(ctx)
	loopCtx := p.ctx
	p.dispatchLocked()
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				p.dispatch()
			}
		}
	}()
}

// RefreshNow dispatches a health check outside the schedule. When a request
// is already in flight nothing is dispatched and false is returned; the
// pending request's outcome answers the refresh.
func (p *Poller) RefreshNow() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopped || p.snap.InFlight() {
		return false
	}
	p.dispatchLocked()
	return true
}

// CurrentState returns the derived connection state.
func (p *Poller) CurrentState() state.ConnectionState {
	return p.store.Snapshot().State
}

// InFlight reports whether a health check is outstanding. Presentation
// layers disable their refresh control while it is true.
func (p *Poller) InFlight() bool {
	return p.store.Snapshot().InFlight()
}

// Snapshot returns the latest published snapshot.
func (p *Poller) Snapshot() state.Snapshot {
	return p.store.Snapshot()
}

// Stop cancels the schedule and any in-flight request. Responses arriving
// afterwards are ignored. Safe to call multiple times. Use Wait to block
// until outstanding checks have returned.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

// Wait blocks until every dispatched health check has returned. Call it
// after Stop so the checks see their context cancelled.
func (p *Poller) Wait() {
	p.inflight.Wait()
}

func (p *Poller) dispatch() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dispatchLocked()
}

// dispatchLocked must be called with p.mu held.
func (p *Poller) dispatchLocked() {
	if p.stopped || p.ctx == nil || p.ctx.Err() != nil {
		return
	}
	p.seq++
	seq := p.seq
	ctx := p.ctx

	p.snap = p.snap.Dispatched(seq)
	p.store.Publish(p.snap)

	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		result, err := p.checker.CheckHealth(ctx)
		p.resolve(seq, result, err)
	}()
}

func (p *Poller) resolve(seq uint64, result api.HealthCheckResult, err error) {
	p.mu.Lock()
	if p.stopped || p.ctx.Err() != nil {
		p.snap = p.snap.Abandoned()
		p.store.Publish(p.snap)
		p.mu.Unlock()
		return
	}
	next, applied := p.snap.Resolved(seq, result, err, p.now())
	p.snap = next
	p.store.Publish(next)
	p.mu.Unlock()

	if !applied {
		return
	}
	switch next.State {
	case state.Disconnected:
		log.Printf("health poll failed: %v", err)
	case state.Error:
		if err != nil {
			log.Printf("health poll returned unusable body: %v", err)
		} else {
			log.Printf("backend reported status %q", result.Status)
		}
	}
}
