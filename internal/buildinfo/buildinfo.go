// Package buildinfo carries version stamps injected with -ldflags.
package buildinfo

import "time"

// Set via -ldflags "-X github.com/xelth-com/loadboard/internal/buildinfo.CommitHash=..."
var (
	BuildTime  string
	CommitTime string
	CommitHash string
)

var started = time.Now().UTC()

// Info is what /api/status reports about the running binary
type Info struct {
	BuildTime  string `json:"buildTime,omitempty"`
	CommitTime string `json:"commitTime,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
	StartTime  string `json:"startTime"`
	Uptime     string `json:"uptime"`
}

// Current returns the build stamps and uptime at now
func Current(now time.Time) Info {
	return Info{
		BuildTime:  BuildTime,
		CommitTime: CommitTime,
		CommitHash: CommitHash,
		StartTime:  started.Format(time.RFC3339),
		Uptime:     now.Sub(started).Truncate(time.Second).String(),
	}
}
