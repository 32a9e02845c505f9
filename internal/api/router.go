package api

import (
	"go-dialog/internal/auth"
	"go-dialog/internal/config"
	"go-dialog/internal/dialogue"
	"go-dialog/internal/facts"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, engine *dialogue.Engine, store facts.Store) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/go-dialog" or any custom path, always starts with '/'

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/users/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())
		group.GET("/users/online", OnlineUserCountHandler(rdb))

		// --- Dialogue endpoints ---
		group.POST("/chat/:interlocutor/start", auth.AuthMiddleware(cfg, rdb, false), StartChatHandler(engine))
		group.POST("/chat/:interlocutor/message", auth.AuthMiddleware(cfg, rdb, false), ChatMessageHandler(engine))
		group.GET("/chat/:interlocutor/replies", auth.AuthMiddleware(cfg, rdb, false), ChatRepliesHandler(engine))
		group.GET("/chat/:interlocutor/facts", auth.AuthMiddleware(cfg, rdb, false), ChatFactsHandler(store))

		// --- Streaming WebSocket endpoint ---
		group.GET("/ws/chat/:interlocutor", WSChatHandler(cfg, engine))
	}
	return r
}
