package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kanban_board/internal/config"
	"kanban_board/internal/db"
	httpServer "kanban_board/internal/http"
	"kanban_board/internal/http/middleware"
	"kanban_board/internal/logger"
	"kanban_board/internal/repository"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	gin.SetMode(gin.ReleaseMode)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	applied, err := db.Migrate(ctx, dbPool)
	if err != nil {
		logger.Fatal("migrations failed", "error", err)
	}
	logger.Info("migrations applied", "count", len(applied))

	rdb := middleware.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rdb != nil {
		defer rdb.Close()
	}

	deps, broker := httpServer.NewDeps(cfg, httpServer.Stores{
		Accounts: repository.NewAccountRepository(dbPool),
		Sessions: repository.NewSessionRepository(dbPool),
		Profiles: repository.NewProfileRepository(dbPool),
		Tasks:    repository.NewTaskRepository(dbPool),
		Audit:    repository.NewAuditRepository(dbPool),
	}, dbPool, rdb)

	if broker != nil {
		if _, err := broker.Run(ctx); err != nil {
			logger.Fatal("realtime broker failed to subscribe", "error", err)
		}
		logger.Info("realtime events routed through redis")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           httpServer.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps.Hub.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}
