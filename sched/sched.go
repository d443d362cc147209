// Package sched provides a periodic callback driven at a constant
// interval on a background goroutine, used by
// control.ConfigStore.PollReload. passer.Passer does not use it: the
// Passer's retry timer comes from its Watcher's ScheduleTimer.
//
// fdpass needs only a single repeating callback per Scheduler, so this
// uses one time.Timer, rescheduled on every tick until explicitly
// stopped, rather than a timer heap.
package sched

import (
	"sync"
	"time"
)

// Timer is a handle returned by Scheduler.ScheduleRepeating. Stop is
// idempotent and safe to call from the callback it was scheduled for.
type Timer interface {
	Stop()
}

// Scheduler schedules a repeating callback, matching the
// schedule_timer(interval, cb) capability spec §9 names as part of the
// host event loop's minimal capability set.
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, cb func()) Timer
}

// RealScheduler drives callbacks from the Go runtime's own timer wheel.
// control.ConfigStore.PollReload uses it by default for periodic config
// reloads, a concern that is goroutine-safe by construction and does not
// touch a Passer's single event-loop thread. It must never be used to
// drive a Passer's own callbacks directly (PushSendFH/PushRecvFH/
// Shutdown or anything reachable from them): time.AfterFunc runs cb on
// a dedicated goroutine, and Passer assumes every call arrives from one
// thread, per spec §5.
type RealScheduler struct{}

// NewRealScheduler constructs the default, wall-clock-driven Scheduler.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{}
}

func (RealScheduler) ScheduleRepeating(interval time.Duration, cb func()) Timer {
	rt := &realTimer{}
	rt.fire = func() {
		cb()
		rt.mu.Lock()
		stopped := rt.stopped
		rt.mu.Unlock()
		if !stopped {
			rt.timer.Reset(interval)
		}
	}
	rt.timer = time.AfterFunc(interval, rt.fire)
	return rt
}

type realTimer struct {
	mu      sync.Mutex
	stopped bool
	timer   *time.Timer
	fire    func()
}

func (rt *realTimer) Stop() {
	rt.mu.Lock()
	rt.stopped = true
	rt.mu.Unlock()
	rt.timer.Stop()
}
