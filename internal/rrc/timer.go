package rrc

import (
	"sync"
	"time"
)

// retxTimers runs the per-terminal retransmission timers. Expiry is reported
// through the expired callback with only the rnti; the owner re-resolves the
// terminal under its own lock, so a timer firing concurrently with user
// removal is harmless. A generation counter per rnti keeps a stopped timer
// that already left the runtime queue from reporting a stale expiry.
type retxTimers struct {
	mu      sync.Mutex
	expired func(rnti uint16)
	timers  map[uint16]*time.Timer
	gen     map[uint16]uint64
}

func newRetxTimers(expired func(rnti uint16)) *retxTimers {
	return &retxTimers{
		expired: expired,
		timers:  make(map[uint16]*time.Timer),
		gen:     make(map[uint16]uint64),
	}
}

// schedule arms, or re-arms, the timer for rnti.
func (t *retxTimers) schedule(rnti uint16, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if old, ok := t.timers[rnti]; ok {
		old.Stop()
	}
	t.gen[rnti]++
	g := t.gen[rnti]
	t.timers[rnti] = time.AfterFunc(d, func() { t.fire(rnti, g) })
}

func (t *retxTimers) fire(rnti uint16, g uint64) {
	t.mu.Lock()
	if t.gen[rnti] != g {
		t.mu.Unlock()
		return
	}
	delete(t.timers, rnti)
	t.mu.Unlock()
	t.expired(rnti)
}

// cancel disarms the timer for rnti if one is pending.
func (t *retxTimers) cancel(rnti uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen[rnti]++
	if tm, ok := t.timers[rnti]; ok {
		tm.Stop()
		delete(t.timers, rnti)
	}
}

func (t *retxTimers) cancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for rnti, tm := range t.timers {
		t.gen[rnti]++
		tm.Stop()
		delete(t.timers, rnti)
	}
}
