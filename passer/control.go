// Ambient control-plane wiring on top of control.ConfigStore,
// control.MetricsRegistry, and control.DebugProbes: hot-tunable retry
// interval and runtime metrics introspection for a running Passer.
package passer

import (
	"time"

	"github.com/fhs-fdpass/fdpass/control"
)

// retryIntervalConfigKey is the control.ConfigStore key WireConfigStore
// watches for hot-reloading the retry interval, in milliseconds.
const retryIntervalConfigKey = "fdpass.retry_interval_ms"

// WireConfigStore registers a reload listener on cs that updates p's
// retry interval whenever retryIntervalConfigKey changes. Only the
// start of the *next* retry episode picks up a changed interval — a
// retry already in flight keeps the cadence it was armed with, since
// Watcher.ScheduleTimer takes its interval once rather than re-reading
// it on every tick.
func (p *Passer) WireConfigStore(cs *control.ConfigStore) {
	apply := func() {
		ms, ok := cs.IntValue(retryIntervalConfigKey)
		if !ok || ms <= 0 {
			return
		}
		p.retryIntervalNs.Store(int64(time.Duration(ms) * time.Millisecond))
	}
	apply()
	cs.OnReload(apply)
}

// RegisterProbes wires p's runtime state into registry and probes:
// registry gets p's flattened api.Metrics fields on every call (so a
// caller polling registry.GetSnapshot between calls sees a stale but
// self-consistent snapshot, not a torn one), and probes exposes both
// that registry dump and p's descriptive ServiceInfo under fixed
// names. Platform-specific probes (CPU count on Linux and Windows, and
// on Linux also the descriptor-table rlimit a Sentinel runs into) are
// registered alongside them; other platforms register none.
func (p *Passer) RegisterProbes(registry *control.MetricsRegistry, probes *control.DebugProbes) {
	refresh := func() {
		m := p.Metrics()
		registry.Replace(map[string]any{
			"send_queue_depth": m.SendQueueDepth,
			"recv_queue_depth": m.RecvQueueDepth,
			"send_completed":   m.SendCompleted,
			"recv_completed":   m.RecvCompleted,
			"retry_count":      m.RetryCount,
			"in_retry_mode":    m.InRetryMode,
			"started_at":       m.StartedAt,
		})
	}
	probes.RegisterProbe("fdpass.metrics", func() any {
		refresh()
		return registry.GetSnapshot()
	})
	probes.RegisterProbe("fdpass.info", func() any {
		return ServiceInfo(p.metrics.StartedAt)
	})
	control.RegisterPlatformProbes(probes)
}
