package utils

import (
	"sort"
	"sync"
	"time"

	"market-dashboard/src/interfaces"
)

// -----------------------------------------------------------------------------
// RealScheduler
// -----------------------------------------------------------------------------

// RealScheduler fires callbacks on the event loop after a wall-clock delay.
type RealScheduler struct {
	loop *EventLoop
}

func NewRealScheduler(loop *EventLoop) *RealScheduler {
	return &RealScheduler{loop: loop}
}

func (s *RealScheduler) AfterFunc(d time.Duration, fn func()) interfaces.ITimer {
	return time.AfterFunc(d, func() {
		s.loop.Post(fn)
	})
}

// -----------------------------------------------------------------------------
// ManualScheduler
// -----------------------------------------------------------------------------

// ManualScheduler is a virtual clock. Timers only fire when Advance moves the
// clock past their deadline. Tests use it to drive backoff and expiry.
type ManualScheduler struct {
	mu     sync.Mutex
	loop   *EventLoop
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	sched   *ManualScheduler
	seq     int
	at      time.Duration
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// -----------------------------------------------------------------------------

func NewManualScheduler(loop *EventLoop) *ManualScheduler {
	return &ManualScheduler{loop: loop}
}

// -----------------------------------------------------------------------------

func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) interfaces.ITimer {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	t := &manualTimer{sched: s, seq: s.seq, at: s.now + d, delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// -----------------------------------------------------------------------------

func (t *manualTimer) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// -----------------------------------------------------------------------------

// Advance moves the clock forward by d, firing due timers in deadline order.
// Timers scheduled by a firing callback fire too if they fall inside d.
func (s *ManualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d

	for {
		next := s.nextDueLocked(target)
		if next == nil {
			break
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()

		s.loop.Post(next.fn)

		s.mu.Lock()
	}

	s.now = target
	s.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (s *ManualScheduler) nextDueLocked(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range s.timers {
		if t.stopped || t.fired || t.at > target {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

// -----------------------------------------------------------------------------

// Pending returns the delays of timers that have neither fired nor been
// stopped, in scheduling order.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			pending = append(pending, t)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].seq < pending[j].seq })

	out := make([]time.Duration, 0, len(pending))
	for _, t := range pending {
		out = append(out, t.delay)
	}
	return out
}

// -----------------------------------------------------------------------------

// Now returns the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}
