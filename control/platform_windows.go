//go:build windows
// +build windows

// control/platform_windows.go
//
// Windows-specific debug probes.

package control

import (
	"runtime"
)

// RegisterPlatformProbes adds Windows-specific debug probes to dp.
// Windows has no per-process descriptor-table ceiling analogous to
// RLIMIT_NOFILE (handle allocation is governed by system-wide desktop
// heap and paged-pool limits, not a queryable per-process rlimit), so
// this exposes only what the platform actually offers a caller: the
// logical CPU count.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
}
