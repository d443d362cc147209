//go:build !linux && !windows
// +build !linux,!windows

// control/platform_other.go
//
// Stub for platforms with no platform-specific probes defined, so
// passer.Passer.RegisterProbes (which calls RegisterPlatformProbes
// unconditionally) still builds outside linux/windows.

package control

// RegisterPlatformProbes is a no-op here.
func RegisterPlatformProbes(dp *DebugProbes) {}
