package rrc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetxTimerFires(t *testing.T) {
	fired := make(chan uint16, 1)
	timers := newRetxTimers(func(rnti uint16) { fired <- rnti })

	timers.schedule(0x46, 5*time.Millisecond)

	select {
	case rnti := <-fired:
		assert.Equal(t, uint16(0x46), rnti)
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestRetxTimerCancel(t *testing.T) {
	fired := make(chan uint16, 1)
	timers := newRetxTimers(func(rnti uint16) { fired <- rnti })

	timers.schedule(0x46, 20*time.Millisecond)
	timers.cancel(0x46)

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRetxTimerRescheduleReplaces(t *testing.T) {
	fired := make(chan uint16, 2)
	timers := newRetxTimers(func(rnti uint16) { fired <- rnti })

	timers.schedule(0x46, time.Hour)
	timers.schedule(0x46, 5*time.Millisecond)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("rescheduled timer did not fire")
	}

	select {
	case <-fired:
		t.Fatal("replaced timer fired as well")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRetxTimerCancelAll(t *testing.T) {
	fired := make(chan uint16, 4)
	timers := newRetxTimers(func(rnti uint16) { fired <- rnti })

	timers.schedule(0x46, 20*time.Millisecond)
	timers.schedule(0x47, 20*time.Millisecond)
	timers.cancelAll()

	select {
	case <-fired:
		t.Fatal("cancelled timer fired")
	case <-time.After(100 * time.Millisecond):
	}
}
