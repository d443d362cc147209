package passer

import "github.com/fhs-fdpass/fdpass/affinity"

// PinEventLoop pins the calling OS thread to cpuID. Callers that run
// their event loop on a dedicated goroutine (via runtime.LockOSThread)
// can call this from inside that goroutine to additionally pin it to a
// fixed core, avoiding scheduler migration jitter on the single thread
// this module assumes drives every callback. On a build with no
// affinity support (anything but linux with cgo, or windows) this is a
// silent no-op rather than an error: single-threaded cooperative dispatch is
// correct with or without a pinned core, so there is nothing for a
// caller to react to.
func PinEventLoop(cpuID int) error {
	if !affinity.Available() {
		return nil
	}
	return affinity.SetAffinity(cpuID)
}
