package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tunevault/db"
	"tunevault/internal/auth"
	"tunevault/internal/config"
	"tunevault/internal/metrics"
	"tunevault/internal/tracks"
	"tunevault/internal/users"
	"tunevault/internal/web"
	"tunevault/middleware"

	"github.com/charmbracelet/log"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Fatal("failed to create media directories", "error", err)
	}

	sqliteDB, err := db.ConnectToSQLite(cfg.SQLitePath)
	if err != nil {
		logger.Fatal("failed to connect to SQLite", "error", err)
	}
	defer sqliteDB.Close()

	if err := db.InitializeSchema(sqliteDB); err != nil {
		logger.Fatal("failed to initialize database schema", "error", err)
	}
	logger.Info("database ready", "path", cfg.SQLitePath)

	factory := db.NewRepositoryFactory(sqliteDB)
	userRepo := factory.NewUserRepository()
	trackRepo := factory.NewTrackRepository()

	dbManager := db.NewManager()
	defer dbManager.Stop()

	tokenService := auth.NewService(cfg.JwtKey)
	counters := metrics.NewCounters()

	userService := users.NewUserService(userRepo, dbManager, logger.With("component", "users"))
	trackService := tracks.NewTrackService(trackRepo, dbManager, cfg, logger.With("component", "tracks"))

	if err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin account", "error", err)
	}

	router := &web.Router{
		Auth:         users.NewAuthHandlers(userService, tokenService, logger.With("component", "auth")),
		Tracks:       tracks.NewTrackHandlers(trackService, cfg, counters, logger.With("component", "tracks")),
		Metrics:      metrics.NewHandlers(counters),
		Middleware:   middleware.NewMiddleware(tokenService),
		LoginLimiter: middleware.NewLoginLimiter(1, 5),
		Counters:     counters,
		Logger:       logger.With("component", "http"),
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router.SetupRoutes(),
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment, "release", cfg.Release)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", "error", err)
		}
	}()

	waitForShutdown(server, logger)
}

func waitForShutdown(server *http.Server, logger *log.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sig := <-stop
	logger.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
