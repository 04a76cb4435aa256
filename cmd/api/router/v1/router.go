package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/port"
	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/realtime"
	gatewayHandler "github.com/MykhailoZinenko/irc-chat-app/internal/pkg/gateway/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, cache cacheport.Cache, router *realtime.Router, log *slog.Logger) {
	v1 := r.Group("/api/v1")
	gatewayHandler.RegisterRoutes(v1, pool, cache, router, log)
}
