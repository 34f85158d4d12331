// Package api exposes the operator surface: health and status, fact
// administration, per-channel learning policy, and a live reply feed.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-infobot/internal/auth"
	"go-infobot/internal/bridge"
	"go-infobot/internal/config"
	"go-infobot/internal/db"
	"go-infobot/internal/fact"
	"go-infobot/internal/infobot"
	"go-infobot/internal/ingest"
	"go-infobot/internal/settings"
	"go-infobot/internal/user"
)

// Deps carries the live components the handlers report on and mutate.
type Deps struct {
	Facts    fact.Provider
	Bot      *infobot.Responder
	Bridge   *bridge.Bridge
	Settings *settings.Manager
	Gateway  *ingest.Gateway
	Feed     *Feed
}

func usersExist() bool {
	var count int64
	if db.DB == nil {
		return false
	}
	db.DB.Model(&user.User{}).Count(&count)
	return count > 0
}

func SetupRouter(cfg *config.Config, rdb *redis.Client, deps Deps) *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/status", StatusHandler(cfg, deps))

	// Setup: only if no users
	r.POST("/setup", SetupHandler())

	// Auth
	r.POST("/auth/login", LoginHandler(cfg, rdb))
	r.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
	r.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())
	r.GET("/users/online", OnlineUserCountHandler(rdb))

	// Facts
	r.GET("/facts/:key", auth.AuthMiddleware(cfg, rdb, false), GetFactHandler(deps))
	r.DELETE("/facts/:key", auth.AuthMiddleware(cfg, rdb, true), DeleteFactHandler(deps))
	r.POST("/facts/:key/lock", auth.AuthMiddleware(cfg, rdb, true), SetFactLockHandler(deps, true))
	r.POST("/facts/:key/unlock", auth.AuthMiddleware(cfg, rdb, true), SetFactLockHandler(deps, false))

	// Chat connector surface
	r.POST("/messages", auth.AuthMiddleware(cfg, rdb, false), IngestMessageHandler(deps))
	r.PUT("/communities/:id/members", auth.AuthMiddleware(cfg, rdb, false), CommunityJoinHandler(deps))
	r.DELETE("/communities/:id", auth.AuthMiddleware(cfg, rdb, false), CommunityDeleteHandler(deps))
	r.DELETE("/channels/:id", auth.AuthMiddleware(cfg, rdb, false), ChannelDeleteHandler(deps))

	// Per-channel learning policy
	r.GET("/channels/:channel/settings", auth.AuthMiddleware(cfg, rdb, false), GetChannelSettingsHandler(deps))
	r.PUT("/channels/:channel/settings", auth.AuthMiddleware(cfg, rdb, true), UpdateChannelSettingsHandler(deps))

	// Live reply feed
	r.GET("/ws/replies", ReplyFeedHandler(cfg, deps))

	return r
}
