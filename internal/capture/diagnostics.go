package capture

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// HostDiagnostics is a point-in-time snapshot of the machine a Stream is
// running on, logged once at Open and available to a host's diagnostics
// endpoint — useful context when a user reports a capture problem (the
// teacher's collectors pull the same gopsutil/v3/host.Info() for its
// enrollment heartbeat; here it's a one-shot rather than a polled metric).
type HostDiagnostics struct {
	OS              string
	Platform        string
	PlatformVersion string
	KernelVersion   string
	Uptime          time.Duration
}

// hostDiagnostics queries gopsutil for a HostDiagnostics snapshot. Errors
// are swallowed into a zero-value result: diagnostics are a logging nicety,
// never a reason to fail Open.
func hostDiagnostics() HostDiagnostics {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return HostDiagnostics{}
	}
	return HostDiagnostics{
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Uptime:          time.Duration(info.Uptime) * time.Second,
	}
}
