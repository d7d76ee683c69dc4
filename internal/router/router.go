package router

import (
	"github.com/arixen/socialite/internal/auth"
	"github.com/arixen/socialite/internal/events"
	"github.com/arixen/socialite/internal/handlers"
	"github.com/arixen/socialite/internal/middleware"
	"github.com/arixen/socialite/internal/models"
	"github.com/arixen/socialite/internal/repositories"
	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/config"
	"github.com/arixen/socialite/pkg/response"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.HTTPErrorHandler = response.NewHTTPErrorHandler(log)
}

// SetupRoutes wires repositories, services and handlers and registers all
// application routes.
func SetupRoutes(e *echo.Echo, db *config.DB, cfg *config.Config, publisher events.Publisher, log *zap.Logger) error {
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Notification{},
	); err != nil {
		return err
	}
	log.Info("PostgreSQL auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(db.Mongo.Database(cfg.MongoDBName))

	// --- Services ---
	followService := services.NewFollowService(db.Postgres, userRepo, followRepo, notificationRepo, publisher, log)

	var tokenStore auth.TokenStore
	if db.Redis != nil {
		tokenStore = auth.NewRedisTokenStore(db.Redis)
	} else {
		tokenStore = auth.NewMemoryTokenStore()
		log.Warn("REDIS_ADDR not set, using in-memory token revocation store")
	}

	// --- Route groups ---
	pub := e.Group("/api/v1")
	priv := e.Group("/api/v1")
	priv.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, tokenStore))

	authGroup := pub.Group("/auth")
	authHandler := handlers.NewAuthHandler(userRepo, tokenStore, publisher, cfg.JWTSecret, log)
	authHandler.RegisterAuthRoutes(authGroup, priv)

	userHandler := handlers.NewUserHandler(userRepo, followService, log)
	userHandler.RegisterProfileRoutes(priv)

	followHandler := handlers.NewFollowHandler(followService)
	followHandler.RegisterFollowRoutes(priv, pub)

	postHandler := handlers.NewPostHandler(postRepo)
	postHandler.RegisterPostRoutes(priv)

	uploadHandler, err := handlers.NewUploadHandler(cfg.UploadDir, cfg.PublicURL)
	if err != nil {
		return err
	}
	uploadHandler.RegisterUploadRoutes(priv, e)

	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo, notificationRepo, publisher, log)
	likeHandler.RegisterLikeRoutes(priv)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(priv)

	log.Info("all routes configured")
	return nil
}
