package deps

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/toolshelf/internal/catalog"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
	"github.com/MrSnakeDoc/toolshelf/internal/notify"
	"github.com/MrSnakeDoc/toolshelf/internal/version"
)

// Pinger reports whether the remote store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Build         version.Info
	AllowedHosts  []string         // Host headers allowed on admin routes
	AllowedCIDRS  []string         // IPs allowed on admin routes (reload, readyz)
	TrustProxy    bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst     int              // mutating API requests allowed at once per client IP
	RatePerMinute int              // refill of the per-IP bucket
	Catalog       *catalog.Catalog // local list of tools, source of every API answer
	Notifications *notify.Feed     // user-facing outcome feed
	Store         Pinger           // remote store, for readiness
	ReloadTrigger chan struct{}    // Channel to trigger a manual reload from the store
}
