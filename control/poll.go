package control

import (
	"time"

	"github.com/fhs-fdpass/fdpass/sched"
)

// PollReload schedules load to run every interval via s, merging
// whatever key/value map it returns into cs and dispatching every
// OnReload listener. For callers that source configuration from a
// file, environment watch, or remote store rather than calling
// SetConfig themselves — SetConfig and dispatchReload are already
// mutex-protected, so calling this from sched's timer goroutine is
// safe regardless of what else touches cs concurrently.
func (cs *ConfigStore) PollReload(s sched.Scheduler, interval time.Duration, load func() map[string]any) sched.Timer {
	return s.ScheduleRepeating(interval, func() {
		cs.SetConfig(load())
	})
}
