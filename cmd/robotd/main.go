package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"robot-factory-backend/config"
	"robot-factory-backend/internal/api"
	"robot-factory-backend/internal/db"
	"robot-factory-backend/internal/notification"
	"robot-factory-backend/internal/report"
	"robot-factory-backend/internal/store"
)

func main() {
	config.LoadEnv()

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("path", configPath))

	if cfg.Mail.Host == "" {
		logger.Fatal("mail.host must be configured to deliver availability notifications")
	}

	loc, err := cfg.Report.Location()
	if err != nil {
		logger.Fatal("invalid report timezone", zap.Error(err))
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	appStore := store.NewGormStore(gormDB)

	mailer, err := notification.NewSMTPMailer(cfg.Mail)
	if err != nil {
		logger.Fatal("failed to initialize mailer", zap.Error(err))
	}
	notifier := notification.NewNotifier(appStore, mailer, cfg.Mail.DefaultFrom, logger)
	appStore.OnRobotSaved(notifier.RobotSaved)

	if cfg.Server.GinMode != "" {
		gin.SetMode(cfg.Server.GinMode)
	}

	// Initialize router
	handler := api.NewHandler(appStore, report.NewGenerator(appStore, loc), loc, logger)
	router := api.NewRouter(handler, cfg.Server, logger)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("shutdown signal received, stopping server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("HTTP server Shutdown", zap.Error(err))
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		sqlDB.Close()
	}

	logger.Info("server gracefully stopped")
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
