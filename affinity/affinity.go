// File: affinity/affinity.go
//
// Platform-neutral API for pinning a Passer's event-loop OS thread to
// one logical CPU. Platform-specific implementations live in separate
// files (affinity_linux.go, affinity_windows.go, affinity_stub.go)
// guarded by build tags.

package affinity

// SetAffinity pins the calling OS thread to a given logical CPU/core.
// The caller must already be on the thread it wants pinned — typically
// via runtime.LockOSThread — since affinity is a property of the OS
// thread, not the calling goroutine. On a platform with no
// implementation it returns an error; check Available first to skip
// the attempt.
func SetAffinity(cpuID int) error {
	return setAffinityPlatform(cpuID)
}

// Available reports whether SetAffinity has a real implementation on
// this build, rather than always failing.
func Available() bool {
	return affinityAvailable
}
