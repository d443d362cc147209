//go:build linux
// +build linux

// control/platform_linux.go
//
// Linux-specific debug probes.

package control

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// RegisterPlatformProbes adds Linux-specific debug probes to dp:
// logical CPU count, and the process's current RLIMIT_NOFILE — the
// ceiling a Sentinel's Reacquire runs into when it reports
// api.ErrTableFull, useful when diagnosing why a Passer entered retry
// mode.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.nofile_limit", func() any {
		var rlim unix.Rlimit
		if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err != nil {
			return err.Error()
		}
		return rlim
	})
}
