package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/port"
	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/realtime"
	"github.com/MykhailoZinenko/irc-chat-app/internal/pkg/gateway/presentation/controller"
)

// RegisterRoutes binds the websocket gateway under the given router group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, cache cacheport.Cache, router *realtime.Router, log *slog.Logger) {
	socketCtl := controller.NewSocketController(pool, cache, router, log)

	// GET /api/v1/ws -> realtime gateway endpoint
	g.GET("/ws", socketCtl.Handle())
}
