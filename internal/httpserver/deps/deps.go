package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/susradar/internal/logger"
	"github.com/MrSnakeDoc/susradar/internal/radar"
	"github.com/MrSnakeDoc/susradar/internal/remote"
)

// Pinger reports whether a storage backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger       logger.Logger
	StartTime    time.Time
	Version      string
	Commit       string
	BuildDate    string
	GoVersion    string
	TimeNow      func() time.Time // for testing, defaults to time.Now
	AllowedHosts []string         // Host headers allowed to access the server
	AllowedCIDRS []string         // IPs allowed to access the server
	TrustProxy   bool             // true if running behind a trusted reverse proxy
	CORSOrigins  []string         // origins allowed by the CORS middleware
	RateLimit    int              // burst of mutating requests per client
	RatePerMin   int              // sustained mutating requests per client per minute

	// WriteLimit guards mutating routes. server.New fills it from RateLimit/RatePerMin.
	WriteLimit func(http.Handler) http.Handler

	Radar        *radar.Service // resolution + mutations
	StoreBackend string         // "redis" | "sqlite" | "memory"
	StorePinger  Pinger         // nil for the memory backend

	Sync         *remote.Store // nil when no sync server is configured
	ProbeTrigger chan struct{} // forces a connectivity check (nil when sync is disabled)
}

// Now returns the current time through TimeNow when set.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
