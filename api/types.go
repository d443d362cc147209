// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

import "time"

// PasserState enumerates the lifecycle state of a Passer, per spec §4.5.
type PasserState int

const (
	PasserUnconfigured PasserState = iota
	PasserParent
	PasserChild
	PasserSingle
	PasserShutdown
)

func (s PasserState) String() string {
	switch s {
	case PasserUnconfigured:
		return "unconfigured"
	case PasserParent:
		return "parent"
	case PasserChild:
		return "child"
	case PasserSingle:
		return "single"
	case PasserShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Metrics provides a standard layout for Passer health/statistics reporting,
// exposed through control.DebugProbes.
type Metrics struct {
	SendQueueDepth int
	RecvQueueDepth int
	SendCompleted  uint64
	RecvCompleted  uint64
	RetryCount     uint64
	InRetryMode    bool
	StartedAt      time.Time
}

// ServiceInfo exposes descriptive build- and runtime info for external tools.
type ServiceInfo struct {
	Name      string
	Version   string
	Build     string
	StartedAt time.Time
}
