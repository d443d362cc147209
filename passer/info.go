package passer

import (
	"runtime/debug"
	"time"

	"github.com/fhs-fdpass/fdpass/api"
)

// moduleVersion is the fallback reported when the binary wasn't built
// with module version information embedded (e.g. `go build` outside a
// tagged checkout, or a plain `go run`).
const moduleVersion = "dev"

// ServiceInfo describes this build for a caller that wants to expose
// it alongside Metrics through a control.DebugProbes registry —
// RegisterProbes does exactly that under the name "fdpass.info".
func ServiceInfo(startedAt time.Time) api.ServiceInfo {
	info := api.ServiceInfo{
		Name:      "fdpass",
		Version:   moduleVersion,
		StartedAt: startedAt,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				info.Build = s.Value
				break
			}
		}
	}
	return info
}
