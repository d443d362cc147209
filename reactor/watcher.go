// Watcher adapts EventReactor into the passer.Watcher capability set
// spec §9 names: arm_read/arm_write/disarm_*/schedule_timer. It is the
// default, optional implementation — callers embedding fdpass in their
// own loop may implement passer.Watcher directly instead and skip this
// package entirely.
//
// Watcher never spins its own goroutine: the caller's single
// cooperative event-loop thread (spec §5) drives it by calling Poll in
// its own loop, the same way a server's accept loop calls its own
// poller's Poll method once per iteration. This keeps every Passer
// callback — including retry-timer ticks — firing on that one thread,
// with no locking anywhere in this package.
package reactor

import (
	"time"

	"github.com/fhs-fdpass/fdpass/passer"
)

// Watcher is the default passer.Watcher implementation. passer's
// non-test code never imports reactor (only its external integration
// test does), so reactor importing passer for the shared Timer type
// below does not create an import cycle (the caller constructs the
// default Watcher via NewWatcher and passes it in through
// passer.Config).
type Watcher struct {
	r EventReactor

	readCB     map[uintptr]func()
	writeCB    map[uintptr]func()
	registered map[uintptr]bool

	timers []*timer
}

// Timer is the handle returned by Watcher.ScheduleTimer. It is an
// alias for passer.Timer so *Watcher satisfies passer.Watcher's
// ScheduleTimer signature exactly — Go requires identical named types,
// not just structurally equivalent ones, for interface satisfaction.
type Timer = passer.Timer

// NewWatcher constructs the platform-selected default Watcher (epoll on
// Linux, IOCP on Windows — which fdpass never exercises, since
// descriptor passing is out of scope on Windows per spec §1).
func NewWatcher() (*Watcher, error) {
	r, err := NewReactor()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		r:          r,
		readCB:     make(map[uintptr]func()),
		writeCB:    make(map[uintptr]func()),
		registered: make(map[uintptr]bool),
	}, nil
}

func (w *Watcher) ensureRegistered(fd uintptr) error {
	if w.registered[fd] {
		return nil
	}
	if err := w.r.Register(fd, fd); err != nil {
		return err
	}
	w.registered[fd] = true
	return nil
}

func (w *Watcher) maybeUnregister(fd uintptr) {
	if w.readCB[fd] != nil || w.writeCB[fd] != nil {
		return
	}
	if w.registered[fd] {
		w.r.Unregister(fd)
		delete(w.registered, fd)
	}
}

// ArmRead registers cb to fire whenever fd may have become readable.
func (w *Watcher) ArmRead(fd uintptr, cb func()) error {
	if err := w.ensureRegistered(fd); err != nil {
		return err
	}
	w.readCB[fd] = cb
	return nil
}

// ArmWrite registers cb to fire whenever fd may have become writable.
func (w *Watcher) ArmWrite(fd uintptr, cb func()) error {
	if err := w.ensureRegistered(fd); err != nil {
		return err
	}
	w.writeCB[fd] = cb
	return nil
}

// DisarmRead removes fd's read callback.
func (w *Watcher) DisarmRead(fd uintptr) error {
	delete(w.readCB, fd)
	w.maybeUnregister(fd)
	return nil
}

// DisarmWrite removes fd's write callback.
func (w *Watcher) DisarmWrite(fd uintptr) error {
	delete(w.writeCB, fd)
	w.maybeUnregister(fd)
	return nil
}

// ScheduleTimer arms a repeating callback, checked and fired from
// inside Poll — never from a separate goroutine, unlike sched.Scheduler.
func (w *Watcher) ScheduleTimer(interval time.Duration, cb func()) Timer {
	t := &timer{interval: interval, next: time.Now().Add(interval), cb: cb}
	w.timers = append(w.timers, t)
	return t
}

// Poll waits for I/O readiness or the next due timer, whichever comes
// first, bounded by timeoutMs (-1 blocks indefinitely until an fd event
// or a timer fires), dispatches every ready callback, and returns. The
// caller's event loop is expected to call Poll repeatedly, once per
// iteration of its own loop.
func (w *Watcher) Poll(timeoutMs int) error {
	budget := timeoutMs
	now := time.Now()
	if next, ok := w.nextDeadline(); ok {
		ms := int(next.Sub(now) / time.Millisecond)
		if ms < 0 {
			ms = 0
		}
		if budget < 0 || ms < budget {
			budget = ms
		}
	}

	events := make([]Event, 64)
	n, err := w.r.Wait(events, budget)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		fd := events[i].Fd
		if cb := w.readCB[fd]; cb != nil {
			cb()
		}
		if cb := w.writeCB[fd]; cb != nil {
			cb()
		}
	}
	w.fireDueTimers(time.Now())
	return nil
}

// Close releases the underlying reactor.
func (w *Watcher) Close() error {
	return w.r.Close()
}

func (w *Watcher) nextDeadline() (time.Time, bool) {
	var best time.Time
	found := false
	for _, t := range w.timers {
		if t.stopped {
			continue
		}
		if !found || t.next.Before(best) {
			best = t.next
			found = true
		}
	}
	return best, found
}

func (w *Watcher) fireDueTimers(now time.Time) {
	live := w.timers[:0]
	for _, t := range w.timers {
		if t.stopped {
			continue
		}
		if !now.Before(t.next) {
			t.cb()
			if !t.stopped {
				t.next = now.Add(t.interval)
			}
		}
		if !t.stopped {
			live = append(live, t)
		}
	}
	w.timers = live
}

// timer is the concrete Timer returned by Watcher.ScheduleTimer.
type timer struct {
	interval time.Duration
	next     time.Time
	cb       func()
	stopped  bool
}

func (t *timer) Stop() {
	t.stopped = true
}
