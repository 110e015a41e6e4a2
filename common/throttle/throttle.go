// Package throttle vends a fixed-window attempt limiter backed by an in-memory
// TTL cache, used to slow down credential guessing on the sign-in route.
package throttle

import (
	"time"

	"github.com/bluele/gcache"
)

type Throttle struct {
	c      gcache.Cache
	max    int
	window time.Duration
}

// New builds a Throttle allowing max attempts per key within window. size caps
// how many distinct keys are tracked at once; least recently seen keys get
// evicted first.
func New(size, max int, window time.Duration) *Throttle {
	return &Throttle{
		c:      gcache.New(size).LRU().Build(),
		max:    max,
		window: window,
	}
}

// Allow reports whether the client identified by key may attempt again.
func (t *Throttle) Allow(key string) bool {
	v, err := t.c.Get(key)
	if err != nil {
		// no record, or the previous record expired
		return true
	}
	return v.(int) < t.max
}

// Record counts one failed attempt against key. The counter expires after the
// configured window, opening the gate again.
func (t *Throttle) Record(key string) {
	cnt := 0
	if v, err := t.c.Get(key); err == nil {
		cnt = v.(int)
	}
	// Set never fails for an LRU cache without a loader
	_ = t.c.SetWithExpire(key, cnt+1, t.window)
}

// Reset clears the record for key, e.g. after a successful sign-in.
func (t *Throttle) Reset(key string) {
	t.c.Remove(key)
}
