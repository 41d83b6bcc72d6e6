package deps

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/smartbookmark/bookmarkd/internal/auth"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/session"
	redisstore "github.com/smartbookmark/bookmarkd/internal/store/redis"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Verifier *auth.Verifier    // bearer-token verification
	Store    *redisstore.Store // durable bookmarks backend
	Feed     feed.Feed         // per-owner change feed
	Hub      *session.Hub      // live sessions owned by stream connections

	RedisClient *redis.Client // raw client, for health probes

	AllowedHosts   []string // Host headers allowed to access the server
	AllowedCIDRS   []string // IPs allowed to access infra/reload endpoints
	AllowedOrigins []string // browser origins allowed by CORS ("*" = any)
	TrustProxy     bool     // true if running behind a trusted reverse proxy

	StreamWriteTimeout time.Duration // per-message websocket write deadline
	SeedReloadTrigger  chan struct{} // manual seed re-import trigger (nil if seed disabled)
}
