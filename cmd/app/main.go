package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tasklists/internal/config"
	"tasklists/internal/db"
	httpServer "tasklists/internal/http"
	"tasklists/internal/http/middleware"
	"tasklists/internal/logger"
	"tasklists/internal/service"
	"tasklists/internal/ws"

	"github.com/gin-gonic/gin"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", "error", err)
	}

	if err := logger.Init(logger.Options{
		Level:      cfg.Log.Level,
		JSON:       cfg.Log.JSON,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}); err != nil {
		logger.Fatal("init logger", "error", err)
	}

	if cfg.UsingDefaultSecret() {
		logger.Warn("JWT_SECRET not set, using the built-in development secret", "env", cfg.Env)
	}
	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	store, err := db.Open(ctx, db.Options{
		Driver: cfg.DBDriver,
		Path:   cfg.DBPath,
		DSN:    cfg.DatabaseURL,
	})
	if err != nil {
		logger.Fatal("open store", "driver", cfg.DBDriver, "error", err)
	}
	defer store.Close()

	if err := store.Initialize(ctx); err != nil {
		logger.Fatal("initialize store", "error", err)
	}

	auth, err := service.NewAuthService(cfg.JWTSecret)
	if err != nil {
		logger.Fatal("init auth", "error", err)
	}
	accounts, err := service.NewAccountService(auth.WithBcryptCost(cfg.BcryptCost))
	if err != nil {
		logger.Fatal("init accounts", "error", err)
	}

	limiter := middleware.NewRateLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer limiter.Close()

	hub := ws.NewHub()
	defer hub.Close()

	r := httpServer.NewRouter(httpServer.Deps{
		Store:         store,
		Accounts:      accounts,
		Hub:           hub,
		Limiter:       limiter,
		Limits:        cfg.Limit,
		AllowedOrigin: cfg.AllowedOrigin,
		Version:       version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "env", cfg.Env, "driver", store.Driver())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
