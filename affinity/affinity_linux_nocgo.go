//go:build linux && !cgo
// +build linux,!cgo

// File: affinity/affinity_linux_nocgo.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for Linux builds with cgo disabled, where the
// pthread_setaffinity_np-based implementation in affinity_linux.go is
// unavailable.

package affinity

import "errors"

const affinityAvailable = false

// setAffinityPlatform is a stub for Linux builds without cgo.
func setAffinityPlatform(cpuID int) error {
	return errors.New("affinity: not supported on this platform")
}
