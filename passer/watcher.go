package passer

import "time"

// Timer is the handle returned by Watcher.ScheduleTimer. It mirrors
// sched.Timer but is declared independently here so that passer never
// imports a concrete scheduler — only the capability, per spec §9.
type Timer interface {
	Stop()
}

// Watcher is the host event loop capability set spec §9 requires and
// nothing more: "{arm_read(endpoint, cb), arm_write(endpoint, cb),
// disarm_*, schedule_timer(interval, cb)}. This is an interface, not a
// concrete loop." Passer registers interest on demand — only while the
// corresponding queue is non-empty or a retry is scheduled — and never
// at construction time, so that constructing a Passer before forking is
// safe (spec §5).
//
// Implementations must invoke callbacks on the same thread/goroutine the
// caller will subsequently call Passer methods from; Passer itself does
// no internal locking (spec §5: single-threaded cooperative).
type Watcher interface {
	ArmRead(fd uintptr, cb func()) error
	ArmWrite(fd uintptr, cb func()) error
	DisarmRead(fd uintptr) error
	DisarmWrite(fd uintptr) error

	// ScheduleTimer arms a repeating callback at a bounded interval,
	// backing the §4.6 retry timer. The returned Timer must be stoppable
	// from within its own callback.
	ScheduleTimer(interval time.Duration, cb func()) Timer
}
