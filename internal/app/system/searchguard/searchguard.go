// Package searchguard debounces search input and drops responses that belong
// to a superseded search.
package searchguard

import (
	"sync/atomic"
	"time"
)

// DefaultDelay is the quiet period a search box waits for before searching.
const DefaultDelay = 300 * time.Millisecond

// Policy controls how late responses are treated.
type Policy struct {
	// DropStale discards responses whose ticket is no longer current.
	// When false the last response to arrive wins, whatever its ticket.
	DropStale bool
}

// DefaultPolicy drops stale responses.
var DefaultPolicy = Policy{DropStale: true}

// Sequencer hands out increasing tickets; only the newest ticket is current.
type Sequencer struct {
	policy Policy
	latest atomic.Uint64
}

// NewSequencer returns a Sequencer using policy.
func NewSequencer(policy Policy) *Sequencer {
	return &Sequencer{policy: policy}
}

// Next issues a ticket for a new request, superseding all earlier ones.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest returns the most recently issued ticket (0 before any).
func (s *Sequencer) Latest() uint64 {
	return s.latest.Load()
}

// Accept reports whether a response for ticket should be applied.
func (s *Sequencer) Accept(ticket uint64) bool {
	if !s.policy.DropStale {
		return true
	}
	return ticket == s.latest.Load()
}

// Debouncer collapses a burst of input into one search. Each Touch
// supersedes the previous one; a touch is Due only if nothing newer arrived
// before its delay elapsed. It never starts timers itself, so event loops can
// schedule the delay their own way.
type Debouncer struct {
	delay time.Duration
	gen   atomic.Uint64
}

// NewDebouncer returns a Debouncer; a non-positive delay uses DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Touch records new input and returns its generation.
func (d *Debouncer) Touch() uint64 {
	return d.gen.Add(1)
}

// Due reports whether gen is still the newest input once its delay is over.
func (d *Debouncer) Due(gen uint64) bool {
	return gen != 0 && gen == d.gen.Load()
}

// Cancel makes every pending generation stale.
func (d *Debouncer) Cancel() {
	d.gen.Add(1)
}
