// Package presence maintains the sliding-window set of recently seen
// visitors used for the live viewer count.
package presence

import (
	"sort"
	"sync"
	"time"
)

// DefaultTimeout is how long a visitor stays active after last contact.
const DefaultTimeout = 300 * time.Second

// Tracker maps visitor identities to their last-contact time. All state
// is process-local and discarded at shutdown.
type Tracker struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	timeout time.Duration
	now     func() time.Time
}

// NewTracker creates a tracker with the given timeout.
func NewTracker(timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{
		seen:    make(map[string]time.Time),
		timeout: timeout,
		now:     time.Now,
	}
}

// Touch records contact from identity, sweeps expired records, and
// returns the visitor count. Insert and sweep happen under one lock
// hold, so the count reflects exactly this call's view of the set.
func (t *Tracker) Touch(identity string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.seen[identity] = now
	t.sweepLocked(now)
	return len(t.seen)
}

// Count returns the number of visitors inside the window, sweeping
// first so stale records are never counted.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked(t.now())
	return len(t.seen)
}

// ActiveIPs returns the identities inside the window, sorted. The
// result is never nil so it encodes as [].
func (t *Tracker) ActiveIPs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweepLocked(t.now())
	ips := make([]string, 0, len(t.seen))
	for identity := range t.seen {
		ips = append(ips, identity)
	}
	sort.Strings(ips)
	return ips
}

func (t *Tracker) sweepLocked(now time.Time) {
	for identity, last := range t.seen {
		if now.Sub(last) > t.timeout {
			delete(t.seen, identity)
		}
	}
}
