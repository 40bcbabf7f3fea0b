package deps

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/service"
)

type Deps struct {
	Logger      logger.Logger
	StartTime   time.Time
	Version     string
	Commit      string
	BuildDate   string
	GoVersion   string
	TimeNow     func() time.Time         // for testing, defaults to time.Now
	TrustProxy  bool                     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RedisClient *redis.Client            // Redis client connection, probed by readyz
	DB          *gorm.DB                 // Database handle, probed by readyz
	Bookmarks   *service.BookmarkService // Bookmark CRUD and listing cache
	Users       *service.UserService     // Accounts, tokens, authentication
}
