package main

import (
	"log"

	"github.com/arixen/socialite/internal/events"
	"github.com/arixen/socialite/internal/router"
	"github.com/arixen/socialite/pkg/config"
	"github.com/arixen/socialite/pkg/logger"
	"github.com/arixen/socialite/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := logger.Init(cfg.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	db, err := config.InitDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			zlog.Fatal("failed to connect to NATS", zap.Error(err))
		}
		publisher = natsPublisher
	}
	defer publisher.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, zlog)
	if err := router.SetupRoutes(e, db, cfg, publisher, zlog); err != nil {
		zlog.Fatal("failed to set up routes", zap.Error(err))
	}

	zlog.Info("starting server", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
