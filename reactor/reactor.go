// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral event reactor interface for cross-platform IO multiplexing.

package reactor

// EventReactor defines basic reactor operations across OS platforms.
//
// Wait takes an explicit timeoutMs (-1 blocks indefinitely, 0 polls
// without blocking) so that Watcher can interleave I/O waits with its
// own retry-timer deadlines instead of blocking forever, per spec §9's
// schedule_timer capability.
type EventReactor interface {
	// Register an FD (epoll) or HANDLE (Windows) for IO notifications.
	Register(fd uintptr, userData uintptr) error

	// Unregister removes a previously registered fd/handle.
	Unregister(fd uintptr) error

	// Wait blocks until events are available, the timeout elapses, or
	// an error occurs, and writes into the output slice. Returns the
	// number of events written.
	Wait(events []Event, timeoutMs int) (n int, err error)

	// Close cleans up resources (handle/epfd).
	Close() error
}

// Event contains event information returned by Wait call.
type Event struct {
	Fd       uintptr // File descriptor or handle.
	UserData uintptr // User-provided data.
}
