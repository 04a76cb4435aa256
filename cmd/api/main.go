package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheAdapter "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/cache/adapter"
	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/database"
	queueAdapter "github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/queue/adapter"
	"github.com/MykhailoZinenko/irc-chat-app/internal/infrastructure/realtime"

	v1 "github.com/MykhailoZinenko/irc-chat-app/cmd/api/router/v1"
	"github.com/MykhailoZinenko/irc-chat-app/internal/pkg/channel/application/task"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not loaded", "error", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cache, err := cacheAdapter.NewRedisAdapter(cfg.RedisURL)
	if err != nil {
		log.Error("redis connect failed", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	queueClient, err := queueAdapter.NewAsynqClient(cfg.RedisURL)
	if err != nil {
		log.Error("queue client init failed", "error", err)
		os.Exit(1)
	}
	defer queueClient.Close()

	queueServer, err := queueAdapter.NewAsynqServer(cfg.RedisURL, cfg.WorkerConcurrency, nil, log)
	if err != nil {
		log.Error("queue server init failed", "error", err)
		os.Exit(1)
	}

	rtRouter := realtime.NewRouter(log)
	defer rtRouter.Close()

	task.RegisterSweepInactiveTask(queueServer, queueClient, pool, rtRouter, log)
	if err := task.ScheduleSweep(ctx, queueClient); err != nil {
		log.Warn("sweep schedule failed", "error", err)
	}

	go func() {
		if err := queueServer.Run(ctx); err != nil {
			log.Error("queue server stopped", "error", err)
		}
	}()

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	v1.RegisterRoutes(r, pool, cache, rtRouter, log)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
}
