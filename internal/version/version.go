// Package version holds build metadata for debate-agent.
//
// Set at build time via ldflags:
//
//	go build -ldflags "-X github.com/debateprogram/realtime/internal/version.Version=1.0.0 \
//	                   -X github.com/debateprogram/realtime/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/debateprogram/realtime/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/debate-agent
package version

// Build-time variables (set via ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns a formatted version string.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}

// UserAgent is sent on REST and WebSocket requests.
func UserAgent() string {
	return "debate-agent/" + Version
}
